package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", 200, time.Millisecond)
	m.ObserveGeneration("draft", "engine", time.Second)
	m.IncArtifactSaved()
	m.IncCleanupFailure()
	m.SetStaleLocked(3)
	m.IncDBHealthFailure()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestMetricsRecordAndExpose(t *testing.T) {
	m := New()
	m.ObserveGeneration("final", "", 2*time.Second)
	m.ObserveGeneration("draft", "engine", time.Second)
	m.IncArtifactSaved()
	m.SetStaleLocked(2)
	m.ObserveAPI("POST", "/api/documents/generate", 200, 3*time.Second)

	if got := testutil.ToFloat64(m.genFailures.WithLabelValues("draft", "engine")); got != 1 {
		t.Fatalf("generation failures: %v", got)
	}
	if got := testutil.ToFloat64(m.artifacts); got != 1 {
		t.Fatalf("artifacts saved: %v", got)
	}

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{
		"nexovate_stale_locked_questionnaires 2",
		`nexovate_http_requests_total{method="POST",route="/api/documents/generate",status="200"} 1`,
		"nexovate_generation_duration_seconds_bucket",
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}
