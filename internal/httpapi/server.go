package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"imgclassd/internal/classifier"
	"imgclassd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Classify(ctx context.Context, payload []byte) (classifier.Result, error)
	ListModels() []types.Model
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/", handleInferencePage(svc))
	r.Get("/inference", handleInferencePage(svc))
	r.Post("/upload", handleUpload(svc))
	r.Get("/log", handleLogPage)
	r.Post("/download_log", handleDownloadLog)
	r.Post("/api/classify", handleClassify(svc))

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.ModelsResponse{Models: svc.ListModels()})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(append(b, '\n'))
}

// readPayload returns the uploaded image bytes and their declared media type.
// Multipart requests must carry the image in the "image" field; any other
// content type is taken as the raw image.
func readPayload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var (
		payload  []byte
		declared string
		err      error
	)
	if mediaType == "multipart/form-data" {
		if err = r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, "", bodyError(err)
		}
		f, hdr, ferr := r.FormFile("image")
		if ferr != nil {
			return nil, "", requestError{code: http.StatusBadRequest, msg: `multipart field "image" is required`}
		}
		defer f.Close()
		declared = hdr.Header.Get("Content-Type")
		payload, err = io.ReadAll(f)
	} else {
		declared = mediaType
		payload, err = io.ReadAll(r.Body)
	}
	if err != nil {
		return nil, "", bodyError(err)
	}
	if len(payload) == 0 {
		return nil, "", requestError{code: http.StatusBadRequest, msg: "empty image payload"}
	}
	encoding := "raw"
	if mediaType == "multipart/form-data" {
		encoding = "multipart"
	}
	payloadBytes.WithLabelValues(encoding).Observe(float64(len(payload)))
	return payload, declared, nil
}

func bodyError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return requestError{code: http.StatusRequestEntityTooLarge, msg: "image exceeds size limit"}
	}
	return requestError{code: http.StatusBadRequest, msg: "invalid request body"}
}

// handleClassify godoc
// @Summary      Classify an image
// @Description  Accepts a multipart "image" field or a raw image body and returns the top predictions.
// @Tags         classify
// @Accept       multipart/form-data,image/jpeg,image/png
// @Produce      json
// @Param        image  formData  file  false  "Image file"
// @Success      200  {object}  types.ClassifyResponse
// @Failure      400  {object}  types.ErrorResponse
// @Failure      429  {object}  types.ErrorResponse
// @Failure      500  {object}  types.ErrorResponse
// @Failure      503  {object}  types.ErrorResponse
// @Failure      504  {object}  types.ErrorResponse
// @Router       /api/classify [post]
func handleClassify(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		payload, _, err := readPayload(w, r)
		if err != nil {
			writeJSONError(w, statusForError(err), err.Error(), "input_error")
			return
		}
		logEvent(r, LevelDebug).Int("bytes", len(payload)).Msg("classify request")

		// Join server base context with request context so shutdown cancels waits too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		res, err := svc.Classify(ctx, payload)
		if err != nil {
			// Client went away; nobody to answer.
			if r.Context().Err() != nil {
				return
			}
			status := statusForError(err)
			kind := classifier.Kind(err)
			if status == http.StatusTooManyRequests {
				IncrementBackpressure(kind)
			}
			writeJSONError(w, status, err.Error(), kind)
			logEvent(r, LevelInfo).Int("status", status).Str("kind", kind).Str("request_id", res.RequestID).Dur("dur", time.Since(start)).Err(err).Msg("classify failed")
			return
		}
		writeJSON(w, types.ClassifyResponse{
			RequestID:  res.RequestID,
			Variant:    svc.Status().Variant,
			Label:      res.Label,
			Confidence: res.Confidence,
			Top:        res.Top,
			DurationMS: time.Since(start).Milliseconds(),
		})
		logEvent(r, LevelInfo).Str("request_id", res.RequestID).Str("cls", res.Label).Dur("dur", time.Since(start)).Msg("classify ok")
	}
}
