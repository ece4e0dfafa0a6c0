// Package metrics is an in-process registry for gateway counters and
// latency, exposed as JSON and in Prometheus text format.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

type Registry struct {
	mu         sync.RWMutex
	route      map[string]*RouteStat
	admission  map[string]int64
	backendErr map[string]int64
	gauges     map[string]float64
	Histograms *HistogramRegistry
}

// RouteStat aggregates per-route-class request counts and latency.
type RouteStat struct {
	Count          int64   `json:"count"`
	ErrorCount     int64   `json:"error_count"`
	TotalMillis    int64   `json:"total_millis"`
	MaxMillis      int64   `json:"max_millis"`
	AverageMillis  float64 `json:"average_millis"`
	LastStatusCode int     `json:"last_status_code"`
}

type Snapshot struct {
	GeneratedAt   string               `json:"generated_at"`
	Routes        map[string]RouteStat `json:"routes"`
	Admission     map[string]int64     `json:"admission_totals"`
	BackendErrors map[string]int64     `json:"backend_error_totals"`
	Gauges        map[string]float64   `json:"gauges"`
	Histograms    []HistogramSnapshot  `json:"histograms,omitempty"`
}

func NewRegistry() *Registry {
	return &Registry{
		route:      map[string]*RouteStat{},
		admission:  map[string]int64{},
		backendErr: map[string]int64{},
		gauges:     map[string]float64{},
		Histograms: NewHistogramRegistry(),
	}
}

// Observe records a completed request on its route class.
func (r *Registry) Observe(routeClass string, status int, d time.Duration) {
	millis := d.Milliseconds()
	r.mu.Lock()
	defer r.mu.Unlock()
	stat, ok := r.route[routeClass]
	if !ok {
		stat = &RouteStat{}
		r.route[routeClass] = stat
	}
	stat.Count++
	if status >= 400 {
		stat.ErrorCount++
	}
	stat.TotalMillis += millis
	if millis > stat.MaxMillis {
		stat.MaxMillis = millis
	}
	stat.LastStatusCode = status
	stat.AverageMillis = float64(stat.TotalMillis) / float64(stat.Count)
}

func (r *Registry) ObserveLatency(routeClass string, d time.Duration) {
	r.Histograms.ObserveDuration(routeClass, d)
}

// IncAdmission counts an admission outcome: "banned", "rate_limited_global",
// "rate_limited_<class>", "admitted".
func (r *Registry) IncAdmission(outcome string) {
	outcome = strings.TrimSpace(outcome)
	if outcome == "" {
		return
	}
	r.mu.Lock()
	r.admission[outcome]++
	r.mu.Unlock()
}

// IncBackendError counts a forwarding failure class: "timeout",
// "unreachable", "malformed".
func (r *Registry) IncBackendError(class string) {
	class = strings.TrimSpace(class)
	if class == "" {
		return
	}
	r.mu.Lock()
	r.backendErr[class]++
	r.mu.Unlock()
}

func (r *Registry) SetGauge(name string, value float64) {
	if name == "" {
		return
	}
	r.mu.Lock()
	r.gauges[name] = value
	r.mu.Unlock()
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := Snapshot{
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		Routes:        make(map[string]RouteStat, len(r.route)),
		Admission:     make(map[string]int64, len(r.admission)),
		BackendErrors: make(map[string]int64, len(r.backendErr)),
		Gauges:        make(map[string]float64, len(r.gauges)),
	}
	for k, v := range r.route {
		out.Routes[k] = *v
	}
	for k, v := range r.admission {
		out.Admission[k] = v
	}
	for k, v := range r.backendErr {
		out.BackendErrors[k] = v
	}
	for k, v := range r.gauges {
		out.Gauges[k] = v
	}
	out.Histograms = r.Histograms.Snapshots()
	return out
}

func (r *Registry) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		snap := r.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(snap)
	}
}

func (r *Registry) PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		snap := r.Snapshot()
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		b := &strings.Builder{}
		b.WriteString("# HELP portico_route_count total requests by route class\n")
		b.WriteString("# TYPE portico_route_count counter\n")
		for _, rc := range SortedKeys(snap.Routes) {
			fmt.Fprintf(b, "portico_route_count{route=%q} %d\n", rc, snap.Routes[rc].Count)
		}
		b.WriteString("# HELP portico_route_error_count total error responses by route class\n")
		b.WriteString("# TYPE portico_route_error_count counter\n")
		for _, rc := range SortedKeys(snap.Routes) {
			fmt.Fprintf(b, "portico_route_error_count{route=%q} %d\n", rc, snap.Routes[rc].ErrorCount)
		}
		b.WriteString("# HELP portico_route_avg_millis route average latency in milliseconds\n")
		b.WriteString("# TYPE portico_route_avg_millis gauge\n")
		for _, rc := range SortedKeys(snap.Routes) {
			fmt.Fprintf(b, "portico_route_avg_millis{route=%q} %.3f\n", rc, snap.Routes[rc].AverageMillis)
		}
		b.WriteString("# HELP portico_admission_total admission outcomes\n")
		b.WriteString("# TYPE portico_admission_total counter\n")
		for _, k := range SortedKeys(snap.Admission) {
			fmt.Fprintf(b, "portico_admission_total{outcome=%q} %d\n", k, snap.Admission[k])
		}
		b.WriteString("# HELP portico_backend_error_total backend failures by class\n")
		b.WriteString("# TYPE portico_backend_error_total counter\n")
		for _, k := range SortedKeys(snap.BackendErrors) {
			fmt.Fprintf(b, "portico_backend_error_total{class=%q} %d\n", k, snap.BackendErrors[k])
		}
		b.WriteString("# HELP portico_gauge operational gauge metrics\n")
		b.WriteString("# TYPE portico_gauge gauge\n")
		for _, k := range SortedKeys(snap.Gauges) {
			fmt.Fprintf(b, "portico_gauge{name=%q} %.3f\n", k, snap.Gauges[k])
		}
		for _, h := range snap.Histograms {
			b.WriteString("# HELP portico_latency_seconds latency histogram\n")
			b.WriteString("# TYPE portico_latency_seconds histogram\n")
			for _, bucket := range h.Buckets {
				fmt.Fprintf(b, "portico_latency_seconds_bucket{route=%q,le=\"%.3f\"} %d\n", h.Name, bucket.Le, bucket.Count)
			}
			fmt.Fprintf(b, "portico_latency_seconds_bucket{route=%q,le=\"+Inf\"} %d\n", h.Name, h.Count)
			fmt.Fprintf(b, "portico_latency_seconds_sum{route=%q} %.6f\n", h.Name, h.Sum)
			fmt.Fprintf(b, "portico_latency_seconds_count{route=%q} %d\n", h.Name, h.Count)
			fmt.Fprintf(b, "portico_latency_p50_seconds{route=%q} %.6f\n", h.Name, h.P50)
			fmt.Fprintf(b, "portico_latency_p95_seconds{route=%q} %.6f\n", h.Name, h.P95)
			fmt.Fprintf(b, "portico_latency_p99_seconds{route=%q} %.6f\n", h.Name, h.P99)
		}
		_, _ = w.Write([]byte(b.String()))
	}
}

func SortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
