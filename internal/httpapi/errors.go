package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"imgclassd/internal/classifier"
	"imgclassd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusForError maps classifier errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case classifier.IsInputError(err):
		return http.StatusBadRequest
	case classifier.IsTooBusy(err):
		return http.StatusTooManyRequests
	case classifier.IsTimeout(err):
		return http.StatusGatewayTimeout
	case classifier.IsClosed(err), classifier.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable
	case classifier.IsEngineFault(err):
		return http.StatusInternalServerError
	}
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// requestError is a client-side problem found before the classifier is involved.
type requestError struct {
	code int
	msg  string
}

func (e requestError) Error() string   { return e.msg }
func (e requestError) StatusCode() int { return e.code }

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status, Kind: kind})
}
