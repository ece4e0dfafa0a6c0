package proxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestForwardPassThrough(t *testing.T) {
	var gotPath, gotQuery, gotAuth, gotHost, gotConn string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotHost = r.Header.Get("Host")
		gotConn = r.Header.Get("Keep-Alive")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7}`))
	}))
	defer srv.Close()

	inbound := http.Header{}
	inbound.Set("Authorization", "Bearer token-123")
	inbound.Set("Host", "gateway.example.com")
	inbound.Set("Keep-Alive", "timeout=5")
	inbound.Set("Content-Type", "application/json")

	f := &Forwarder{Client: srv.Client()}
	res, err := f.Forward(context.Background(), http.MethodPost, srv.URL, "/tasks", "page=2", inbound, []byte(`{"title":"x"}`))
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if res.Status != http.StatusCreated || string(res.Body) != `{"id":7}` {
		t.Fatalf("unexpected result: status=%d body=%s", res.Status, res.Body)
	}
	if gotPath != "/tasks" || gotQuery != "page=2" {
		t.Fatalf("unexpected target path=%s query=%s", gotPath, gotQuery)
	}
	if gotAuth != "Bearer token-123" {
		t.Fatalf("authorization header must pass through, got %q", gotAuth)
	}
	if string(gotBody) != `{"title":"x"}` {
		t.Fatalf("body must pass through, got %s", gotBody)
	}
	if gotHost != "" || gotConn != "" {
		t.Fatalf("host/hop-by-hop headers must be scrubbed, got host=%q keepalive=%q", gotHost, gotConn)
	}
}

func TestForwardRelaysBackendErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"title required"}`))
	}))
	defer srv.Close()

	f := &Forwarder{Client: srv.Client()}
	res, err := f.Forward(context.Background(), http.MethodPost, srv.URL, "/tasks", "", http.Header{}, nil)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if res.Status != http.StatusUnprocessableEntity || string(res.Body) != `{"error":"title required"}` {
		t.Fatalf("backend error must relay verbatim, got status=%d body=%s", res.Status, res.Body)
	}
}

func TestForwardTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := srv.Client()
	client.Timeout = 20 * time.Millisecond
	f := &Forwarder{Client: client}
	_, err := f.Forward(context.Background(), http.MethodGet, srv.URL, "/tasks", "", http.Header{}, nil)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestForwardUnreachable(t *testing.T) {
	f := &Forwarder{Client: &http.Client{Timeout: time.Second}}
	_, err := f.Forward(context.Background(), http.MethodGet, "http://127.0.0.1:1", "/x", "", http.Header{}, nil)
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

func TestForwardMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	f := &Forwarder{Client: srv.Client()}
	_, err := f.Forward(context.Background(), http.MethodGet, srv.URL, "/x", "", http.Header{}, nil)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestForwardEmptyBodyIsFine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	f := &Forwarder{Client: srv.Client()}
	res, err := f.Forward(context.Background(), http.MethodDelete, srv.URL, "/tasks/7", "", http.Header{}, nil)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if res.Status != http.StatusNoContent || len(res.Body) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}
