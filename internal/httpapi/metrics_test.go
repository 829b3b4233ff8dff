package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func scrape(t *testing.T) string {
	t.Helper()
	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", rr.Code)
	}
	return rr.Body.String()
}

// TestMetrics_ClassifyExposesSeries drives one raw and one multipart classify
// through the mux and checks the request and payload series on /metrics.
func TestMetrics_ClassifyExposesSeries(t *testing.T) {
	r := NewMux(okService())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/classify", bytes.NewReader(pngBytes(t)))
	req.Header.Set("Content-Type", "image/png")
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("raw classify status=%d body=%s", rr.Code, rr.Body)
	}
	body, ctype := multipartBody(t, "image", pngBytes(t))
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/classify", body)
	req.Header.Set("Content-Type", ctype)
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("multipart classify status=%d body=%s", rr.Code, rr.Body)
	}

	out := scrape(t)
	for _, want := range []string{
		`imgclassd_http_requests_total{method="POST",path="/api/classify",status="200"}`,
		`imgclassd_http_payload_bytes_count{encoding="raw"}`,
		`imgclassd_http_payload_bytes_count{encoding="multipart"}`,
		`imgclassd_http_inflight_requests 0`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("metrics missing %s", want)
		}
	}
}
