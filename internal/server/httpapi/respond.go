package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/fishtank/internal/common"
)

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

type dataBody struct {
	Data any `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps the common error taxonomy to a stable status and message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict, "Already exists"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, common.ErrorInvalidInput):
		return http.StatusBadRequest, "Invalid input"
	case errors.Is(err, common.ErrorOverloaded):
		return http.StatusServiceUnavailable, "Server busy, try again"
	case errors.Is(err, common.ErrorStorageUnavailable):
		return http.StatusServiceUnavailable, "Storage unavailable"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}

// fail writes the response for a service error. Client errors carry the
// error text; server errors are logged and answered generically.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		if status == http.StatusServiceUnavailable {
			w.Header().Set("Retry-After", "1")
		}
	} else {
		msg = err.Error()
	}
	writeError(w, status, msg)
}
