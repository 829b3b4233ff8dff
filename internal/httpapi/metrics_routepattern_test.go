package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetricsMiddleware_UsesRoutePattern ensures requests routed by NewMux are
// labeled with the chi route pattern and counted per status.
func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := NewMux(okService())
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/status", http.MethodGet, "200"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/status", http.MethodGet, "200"))
	if after-before != 1 {
		t.Fatalf("requests_total{path=/status} delta=%v", after-before)
	}
}

func TestIncrementBackpressure(t *testing.T) {
	before := testutil.ToFloat64(backpressureTotal.WithLabelValues("unspecified"))
	IncrementBackpressure("")
	if got := testutil.ToFloat64(backpressureTotal.WithLabelValues("unspecified")) - before; got != 1 {
		t.Fatalf("delta=%v", got)
	}
}
