package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", 200, time.Millisecond)
	m.IncAssetWrite("lot", true)
	m.AddUploadURLs("azure", 3)
	if m.Registry() != nil {
		t.Fatalf("nil metrics must not expose a registry")
	}
}

func TestMetricsCountsAndExposition(t *testing.T) {
	m := NewMetrics()
	m.IncAssetWrite("timesheet", false)
	m.IncAssetWrite("timesheet", true)
	m.IncAssetWrite("timesheet", true)
	m.AddUploadURLs("gcs", 2)
	m.ObserveAPI("POST", "/api/v1/field/timesheets", 201, 20*time.Millisecond)

	if got := testutil.ToFloat64(m.writeOutcome.WithLabelValues("timesheet", "replayed")); got != 2 {
		t.Fatalf("replayed: want=2 got=%v", got)
	}
	if got := testutil.ToFloat64(m.uploadURLs.WithLabelValues("gcs")); got != 2 {
		t.Fatalf("upload urls: want=2 got=%v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `sp_api_requests_total{method="POST",route="/api/v1/field/timesheets",status="201"} 1`) {
		t.Fatalf("exposition missing api counter:\n%s", rec.Body.String())
	}
}
