package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// Ensure NoOpMetrics methods do not panic
func TestNoOpMetrics(t *testing.T) {
	m := &NoOpMetrics{}
	m.RecordHTTPRequest("GET", "/x", 200, time.Millisecond)
	m.RecordSourceFetch("fema", "live")
	m.RecordProviderAttempt("primary", "error")
	m.RecordCacheLookup("updates", "hit")
	m.RecordBroadcast("social_media_update", "ok")
	m.RecordRefresh(time.Millisecond)
	m.SetDBConnectionsActive(1)
	m.RecordDBQuery("exec", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected NoOp handler to return 404, got %d", rec.Code)
	}
}

func TestPrometheusMetricsExposition(t *testing.T) {
	m := NewPrometheus()
	m.RecordHTTPRequest("GET", "/v1/official-updates", 200, 5*time.Millisecond)
	m.RecordSourceFetch("fema", "fixture")
	m.RecordProviderAttempt("primary", "skipped")
	m.RecordCacheLookup("social", "miss")
	m.RecordBroadcast("social_media_update", "ok")
	m.RecordRefresh(time.Second)
	m.SetDBConnectionsActive(3)
	m.RecordDBQuery("query", "success")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`disasterfeed_http_requests_total{endpoint="/v1/official-updates",method="GET",status_code="200"} 1`,
		`disasterfeed_source_fetches_total{source="fema",status="fixture"} 1`,
		`disasterfeed_cache_lookups_total{kind="social",result="miss"} 1`,
		`disasterfeed_db_connections_active 3`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected exposition to contain %q", want)
		}
	}
}

func TestInitSwitchesGlobal(t *testing.T) {
	Init()
	Init()

	RecordCacheLookup("updates", "hit")
	RecordSourceFetch("redcross", "live")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after Init, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "disasterfeed_cache_lookups_total") {
		t.Errorf("expected cache lookup counter in exposition")
	}
}
