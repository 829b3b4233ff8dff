package httpapi

import (
	"bytes"
	"embed"
	"encoding/base64"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"imgclassd/internal/classifier"
	"imgclassd/internal/common/fsutil"
	"imgclassd/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type inferencePage struct {
	Variant string
	Image   template.URL
	Class   string
	Conf    string
	Top     []types.Prediction
	Error   string
}

type logPage struct {
	Name  string
	Lines []string
	Error string
}

// renderPage buffers the template output; on failure it logs and answers 500.
func renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		logEvent(r, LevelError).Str("template", name).Err(err).Msg("render failed")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// dataURI embeds payload for display next to its prediction.
func dataURI(mime string, payload []byte) template.URL {
	if !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(payload)
	}
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload))
}

func handleInferencePage(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logEvent(r, LevelInfo).Msg("inference")
		renderPage(w, r, http.StatusOK, "inference.html", inferencePage{Variant: svc.Status().Variant})
	}
}

func handleUpload(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logEvent(r, LevelInfo).Msg("upload")
		page := inferencePage{Variant: svc.Status().Variant}
		payload, mime, err := readPayload(w, r)
		if err != nil {
			page.Error = err.Error()
			renderPage(w, r, statusForError(err), "inference.html", page)
			return
		}
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		res, err := svc.Classify(ctx, payload)
		if err != nil {
			if r.Context().Err() != nil {
				return
			}
			status := statusForError(err)
			if status == http.StatusTooManyRequests {
				IncrementBackpressure(classifier.Kind(err))
			}
			logEvent(r, LevelInfo).Int("status", status).Str("kind", classifier.Kind(err)).Err(err).Msg("upload failed")
			page.Error = err.Error()
			renderPage(w, r, status, "inference.html", page)
			return
		}
		page.Image = dataURI(mime, payload)
		page.Class = res.Label
		page.Conf = strconv.FormatFloat(float64(res.Confidence), 'f', -1, 32)
		page.Top = res.Top
		renderPage(w, r, http.StatusOK, "inference.html", page)
	}
}

func handleLogPage(w http.ResponseWriter, r *http.Request) {
	if logFile == "" {
		renderPage(w, r, http.StatusNotFound, "log.html", logPage{Name: "log", Error: "log file not configured"})
		return
	}
	lines, err := fsutil.ReadLines(logFile)
	if err != nil {
		logEvent(r, LevelError).Err(err).Msg("read log file")
		renderPage(w, r, http.StatusInternalServerError, "log.html", logPage{Name: logFile, Error: "failed to read log file"})
		return
	}
	renderPage(w, r, http.StatusOK, "log.html", logPage{Name: logFile, Lines: lines})
}

func handleDownloadLog(w http.ResponseWriter, r *http.Request) {
	logEvent(r, LevelInfo).Msg("download_log")
	if logFile == "" {
		writeJSONError(w, http.StatusNotFound, "log file not configured", "")
		return
	}
	p, err := fsutil.ExpandHome(logFile)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	f, err := os.Open(p)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "log file not found", "")
		return
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to stat log file", "")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(p)+`"`)
	http.ServeContent(w, r, filepath.Base(p), st.ModTime(), f)
}
