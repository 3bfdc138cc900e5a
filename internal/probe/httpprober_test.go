package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPProber_Success(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("ok"))
	}))
	defer s.Close()

	p := NewHTTPProber()
	out := p.Probe(context.Background(), s.URL, 2*time.Second)
	if out.Kind != KindSuccess {
		t.Fatalf("want success, got %+v", out)
	}
	if out.StatusCode != 200 {
		t.Fatalf("want status 200, got %d", out.StatusCode)
	}
	if out.LatencyMS < 0 {
		t.Fatalf("latency should be >= 0, got %f", out.LatencyMS)
	}
	if out.Kind.Failed() {
		t.Fatalf("success must not count as failed")
	}
}

func TestHTTPProber_Non2xxIsFailure(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", 500)
	}))
	defer s.Close()

	p := NewHTTPProber()
	out := p.Probe(context.Background(), s.URL, 2*time.Second)
	if out.Kind != KindFailure {
		t.Fatalf("want failure, got %+v", out)
	}
	if out.StatusCode != 500 {
		t.Fatalf("want status 500, got %d", out.StatusCode)
	}
}

func TestHTTPProber_RedirectStatusIsFailure(t *testing.T) {
	// 3xx is outside the readiness contract.
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer s.Close()

	p := NewHTTPProber()
	out := p.Probe(context.Background(), s.URL, 2*time.Second)
	if out.Kind != KindFailure {
		t.Fatalf("want failure for 304, got %+v", out)
	}
}

func TestHTTPProber_Timeout(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer s.Close()

	p := NewHTTPProber()
	start := time.Now()
	out := p.Probe(context.Background(), s.URL, 50*time.Millisecond)
	elapsed := time.Since(start)

	if out.Kind != KindTimeout {
		t.Fatalf("want timeout, got %+v", out)
	}
	if out.StatusCode != 0 {
		t.Fatalf("want status 0 on timeout, got %d", out.StatusCode)
	}
	if elapsed > 150*time.Millisecond {
		t.Fatalf("probe blocked past its timeout: %v", elapsed)
	}
}

func TestHTTPProber_ConnectionRefusedIsError(t *testing.T) {
	p := NewHTTPProber()
	out := p.Probe(context.Background(), "http://127.0.0.1:1", 500*time.Millisecond)
	if out.Kind != KindError {
		t.Fatalf("want error kind, got %+v", out)
	}
	if out.Reason == "" {
		t.Fatalf("want non-empty reason")
	}
}

func TestExtractHost(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"http://example.com:8080/health", "example.com"},
		{"https://example.com", "example.com"},
		{"example.com", "example.com"},
	}
	for _, c := range cases {
		if got := extractHost(c.in); got != c.want {
			t.Fatalf("extractHost(%q)=%q want %q", c.in, got, c.want)
		}
	}
}
