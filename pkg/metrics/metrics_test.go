package metrics

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRegistryObserve(t *testing.T) {
	r := NewRegistry()
	r.Observe("task", 200, 40*time.Millisecond)
	r.Observe("task", 502, 10*time.Millisecond)
	r.Observe("auth", 201, 5*time.Millisecond)
	r.IncAdmission("banned")
	r.IncAdmission("rate_limited_auth")
	r.IncBackendError("timeout")
	r.SetGauge("audit_queue_depth", 3)

	snap := r.Snapshot()
	task := snap.Routes["task"]
	if task.Count != 2 || task.ErrorCount != 1 || task.TotalMillis != 50 || task.LastStatusCode != 502 {
		t.Fatalf("unexpected task stat: %+v", task)
	}
	if task.AverageMillis != 25 {
		t.Fatalf("unexpected average: %v", task.AverageMillis)
	}
	if snap.Admission["banned"] != 1 || snap.Admission["rate_limited_auth"] != 1 {
		t.Fatalf("unexpected admission totals: %+v", snap.Admission)
	}
	if snap.BackendErrors["timeout"] != 1 {
		t.Fatalf("unexpected backend errors: %+v", snap.BackendErrors)
	}
	if snap.Gauges["audit_queue_depth"] != 3 {
		t.Fatalf("unexpected gauges: %+v", snap.Gauges)
	}
}

func TestJSONHandler(t *testing.T) {
	r := NewRegistry()
	r.Observe("logs", 200, time.Millisecond)
	rec := httptest.NewRecorder()
	r.Handler()(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var snap Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Routes["logs"].Count != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestPrometheusHandler(t *testing.T) {
	r := NewRegistry()
	r.Observe("task", 200, 30*time.Millisecond)
	r.ObserveLatency("task", 30*time.Millisecond)
	r.IncAdmission("admitted")
	rec := httptest.NewRecorder()
	r.PrometheusHandler()(rec, httptest.NewRequest("GET", "/metrics/prometheus", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`portico_route_count{route="task"} 1`,
		`portico_admission_total{outcome="admitted"} 1`,
		`portico_latency_seconds_count{route="task"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in exposition:\n%s", want, body)
		}
	}
}

func TestHistogramPercentiles(t *testing.T) {
	h := NewHistogram("task")
	for i := 0; i < 100; i++ {
		h.Observe(8 * time.Millisecond)
	}
	snap := h.Snapshot()
	if snap.Count != 100 || snap.P50 != 0.01 {
		t.Fatalf("unexpected snapshot: count=%d p50=%v", snap.Count, snap.P50)
	}
}

func TestHistogramRegistryReuse(t *testing.T) {
	r := NewHistogramRegistry()
	if r.Get("x") != r.Get("x") {
		t.Fatal("expected same histogram instance per name")
	}
	r.ObserveDuration("x", time.Millisecond)
	if snaps := r.Snapshots(); len(snaps) != 1 || snaps[0].Count != 1 {
		t.Fatalf("unexpected snapshots: %+v", snaps)
	}
}
