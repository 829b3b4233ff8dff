package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"imgclassd/internal/classifier"
	"imgclassd/pkg/types"
)

type mockService struct {
	models      []types.Model
	status      types.StatusResponse
	ready       bool
	result      classifier.Result
	classifyErr error
	got         []byte
}

func (m *mockService) ListModels() []types.Model    { return append([]types.Model(nil), m.models...) }
func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Ready() bool                  { return m.ready }
func (m *mockService) Classify(ctx context.Context, payload []byte) (classifier.Result, error) {
	m.got = payload
	if m.classifyErr != nil {
		return classifier.Result{RequestID: "rid", Err: m.classifyErr}, m.classifyErr
	}
	return m.result, nil
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func multipartBody(t *testing.T, field string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "cat.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write(payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func okService() *mockService {
	return &mockService{
		ready:  true,
		status: types.StatusResponse{State: "ready", Variant: "resnet50"},
		result: classifier.Result{
			RequestID:  "abc",
			Label:      "tabby",
			Confidence: 0.75,
			Top:        []types.Prediction{{Label: "tabby", Confidence: 0.75}, {Label: "tiger_cat", Confidence: 0.2}},
		},
	}
}

func TestModelsHandler(t *testing.T) {
	svc := &mockService{models: []types.Model{{ID: "resnet50", Active: true}, {ID: "xception"}}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/models", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body types.ModelsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Models) != 2 || !body.Models[0].Active {
		t.Fatalf("models=%+v", body.Models)
	}
}

func TestStatusHandler(t *testing.T) {
	svc := &mockService{status: types.StatusResponse{State: "ready", Variant: "xception", MaxQueueDepth: 32}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Variant != "xception" || body.MaxQueueDepth != 32 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHealthzReadyz(t *testing.T) {
	r := NewMux(&mockService{ready: true})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", w.Code)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("readyz status=%d", w.Code)
	}

	r = NewMux(&mockService{ready: false})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "loading") {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
}

func TestAPIClassify_Multipart(t *testing.T) {
	svc := okService()
	payload := pngBytes(t)
	body, ct := multipartBody(t, "image", payload)
	req := httptest.NewRequest(http.MethodPost, "/api/classify", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	NewMux(svc).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp types.ClassifyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Label != "tabby" || resp.Confidence != 0.75 || resp.RequestID != "abc" || resp.Variant != "resnet50" || len(resp.Top) != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if !bytes.Equal(svc.got, payload) {
		t.Fatalf("service received %d bytes, want %d", len(svc.got), len(payload))
	}
}

func TestAPIClassify_RawBody(t *testing.T) {
	svc := okService()
	payload := pngBytes(t)
	req := httptest.NewRequest(http.MethodPost, "/api/classify", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "image/png")
	w := httptest.NewRecorder()
	NewMux(svc).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !bytes.Equal(svc.got, payload) {
		t.Fatalf("payload not forwarded")
	}
}

func TestAPIClassify_RequestErrors(t *testing.T) {
	svc := okService()
	r := NewMux(svc)

	body, ct := multipartBody(t, "file", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/api/classify", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing field: status=%d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/classify", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty body: status=%d", w.Code)
	}
	var e types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil || e.Code != http.StatusBadRequest || e.Error == "" {
		t.Fatalf("error body %q: %v", w.Body.String(), err)
	}
}

func TestAPIClassify_BodyTooLarge(t *testing.T) {
	SetMaxBodyBytes(1024)
	defer SetMaxBodyBytes(0)
	req := httptest.NewRequest(http.MethodPost, "/api/classify", bytes.NewReader(make([]byte, 4096)))
	req.Header.Set("Content-Type", "image/png")
	w := httptest.NewRecorder()
	NewMux(okService()).ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestAPIClassify_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"closed", classifier.ErrClosed, http.StatusServiceUnavailable},
		{"dependency", classifier.ErrDependencyUnavailable("no runtime"), http.StatusServiceUnavailable},
		{"http error", mockHTTPError{msg: "teapot", code: http.StatusTeapot}, http.StatusTeapot},
		{"generic", io.EOF, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		svc := okService()
		svc.classifyErr = tc.err
		req := httptest.NewRequest(http.MethodPost, "/api/classify", bytes.NewReader(pngBytes(t)))
		w := httptest.NewRecorder()
		NewMux(svc).ServeHTTP(w, req)
		if w.Code != tc.code {
			t.Fatalf("%s: status=%d want %d", tc.name, w.Code, tc.code)
		}
		var e types.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
			t.Fatalf("%s: json: %v", tc.name, err)
		}
		if e.Kind != classifier.Kind(tc.err) {
			t.Fatalf("%s: kind=%s", tc.name, e.Kind)
		}
	}
}

func TestInferencePage(t *testing.T) {
	r := NewMux(okService())
	for _, p := range []string{"/", "/inference"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status=%d", p, w.Code)
		}
		if !strings.Contains(w.Body.String(), `action="/upload"`) {
			t.Fatalf("%s: missing upload form", p)
		}
	}
}

func TestUploadRendersPrediction(t *testing.T) {
	body, ct := multipartBody(t, "image", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	NewMux(okService()).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	html := w.Body.String()
	for _, want := range []string{"data:image/png;base64,", "tabby", "0.75", "tiger_cat"} {
		if !strings.Contains(html, want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestUploadRendersError(t *testing.T) {
	svc := okService()
	svc.classifyErr = classifier.ErrClosed
	body, ct := multipartBody(t, "image", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	NewMux(svc).ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "classifier closed") {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestLogPageAndDownload(t *testing.T) {
	p := filepath.Join(t.TempDir(), "inference.log")
	if err := os.WriteFile(p, []byte("2024-01-01 00:00:00,000 [INFO] classify start\n2024-01-01 00:00:01,000 [INFO] classify end cls=tabby\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	SetLogFile(p)
	defer SetLogFile("")
	r := NewMux(okService())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/log", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "classify end cls=tabby") {
		t.Fatalf("log page status=%d body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/download_log", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("download status=%d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, `attachment; filename="inference.log"`) {
		t.Fatalf("content-disposition=%q", cd)
	}
	if !strings.Contains(w.Body.String(), "classify start") {
		t.Fatalf("download body=%q", w.Body.String())
	}
}

func TestLogPage_NotConfigured(t *testing.T) {
	SetLogFile("")
	r := NewMux(okService())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/log", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") || !strings.Contains(w.Body.String(), "log file not configured") {
		t.Fatalf("content-type=%q body=%s", ct, w.Body.String())
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/download_log", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestLogPage_ReadErrorRendersHTML(t *testing.T) {
	SetLogFile(t.TempDir()) // a directory cannot be read as a file
	defer SetLogFile("")
	w := httptest.NewRecorder()
	NewMux(okService()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/log", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") || !strings.Contains(w.Body.String(), "failed to read log file") {
		t.Fatalf("content-type=%q body=%s", ct, w.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	SetCORSOptions(true, []string{"http://example.com"}, []string{"GET", "POST"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)
	r := NewMux(okService())
	req := httptest.NewRequest(http.MethodOptions, "/api/classify", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("allow-origin=%q", got)
	}
}
