package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kalambet/vfkb/internal/kb"
)

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

// kbError maps a knowledge base client error onto an HTTP response. Caller
// mistakes come back as 400s, upstream service failures as the matching
// status or 502.
func kbError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, kb.ErrValidation),
		errors.Is(err, kb.ErrSchemaMismatch),
		errors.Is(err, kb.ErrLocalFile):
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
	case errors.Is(err, kb.ErrAuthentication):
		httpError(w, http.StatusUnauthorized, "authentication_error", "%v", err)
	case errors.Is(err, kb.ErrNotFound):
		httpError(w, http.StatusNotFound, "not_found", "%v", err)
	case errors.Is(err, kb.ErrRateLimit):
		httpError(w, http.StatusTooManyRequests, "rate_limit_error", "%v", err)
	default:
		httpError(w, http.StatusBadGateway, "api_error", "%v", err)
	}
}
