package observability

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsNilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/api/products", "200", time.Millisecond)
	m.IncBatchResult("add_items", "success")
	m.IncCacheLookup("scenario_items", "hit")
	m.ApiInflightInc()
	m.ApiInflightDec()

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 503 {
		t.Fatalf("WriteHTTP(nil): want=503 got=%d", rec.Code)
	}
}

func TestMetricsExposition(t *testing.T) {
	m := New(MetricsConfig{Enabled: true})
	m.ObserveAPI("GET", "/api/scenarios/:id/items", "200", 20*time.Millisecond)
	m.ObserveAPI("POST", "/api/scenarios/:id/items", "503", time.Second)
	m.IncBatchResult("add_items", "skipped")
	m.IncBatchResult("add_items", "skipped")
	m.IncCacheLookup("scenario_items", "miss")

	if got := m.batchResults.Value("add_items", "skipped"); got != 2 {
		t.Fatalf("batch skipped: want=2 got=%v", got)
	}
	if got := m.apiReqError.Value(); got != 1 {
		t.Fatalf("5xx counter: want=1 got=%v", got)
	}

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`pb_api_requests_total{method="GET",route="/api/scenarios/:id/items",status="200"} 1.000000`,
		`pb_api_request_duration_seconds_bucket{method="GET",route="/api/scenarios/:id/items",status="200",le="0.025"} 1`,
		`pb_api_request_duration_seconds_bucket{method="POST",route="/api/scenarios/:id/items",status="503",le="+Inf"} 1`,
		`pb_composition_batch_results_total{op="add_items",outcome="skipped"} 2.000000`,
		`pb_view_cache_lookups_total{view="scenario_items",result="miss"} 1.000000`,
		"# TYPE pb_api_inflight_requests gauge",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q in:\n%s", want, out)
		}
	}
}

func TestEscapeLabel(t *testing.T) {
	if got := escapeLabel("a\"b\\c\nd"); got != `a\"b\\c\nd` {
		t.Fatalf("escapeLabel: got=%q", got)
	}
}
