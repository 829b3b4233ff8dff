package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelInfo,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"DEBUG": LevelDebug,
		"weird": LevelInfo, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	// query param ?log=debug
	r := httptest.NewRequest("GET", "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	// shorthand ?log=1
	r = httptest.NewRequest("GET", "/x?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("shorthand query override failed: %v", got)
	}
	// header X-Log-Level
	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
}

func TestUploadIsLogged(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()

	body, ct := multipartBody(t, "image", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	NewMux(okService()).ServeHTTP(httptest.NewRecorder(), req)
	if !strings.Contains(buf.String(), `"message":"upload"`) || !strings.Contains(buf.String(), `"path":"/upload"`) {
		t.Fatalf("missing upload event: %q", buf.String())
	}

	buf.Reset()
	req = httptest.NewRequest(http.MethodGet, "/inference?log=off", nil)
	NewMux(okService()).ServeHTTP(httptest.NewRecorder(), req)
	if buf.Len() != 0 {
		t.Fatalf("log=off should suppress events: %q", buf.String())
	}
}

func TestRenderFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/log", nil)
	renderPage(w, r, http.StatusOK, "log.html", 42)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	if strings.Contains(w.Body.String(), "<html") {
		t.Fatalf("partial page written: %q", w.Body.String())
	}
	out := buf.String()
	if !strings.Contains(out, `"message":"render failed"`) || !strings.Contains(out, `"template":"log.html"`) || !strings.Contains(out, `"level":"error"`) {
		t.Fatalf("missing render event: %q", out)
	}
}
