package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/tawkr/tawkr-backend/internal/domain"
	"go.uber.org/zap"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

// Error maps err to an HTTP status and writes a plain-text body. Internal
// errors are logged and replaced by a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		http.Error(w, "An internal error occurred", status)
		return
	}

	msg := err.Error()
	var de *domain.DomainError
	if errors.As(err, &de) {
		msg = de.Message
	}
	http.Error(w, msg, status)
}

// StatusOf returns the HTTP status matching err's domain code.
func StatusOf(err error) int {
	switch domain.CodeOf(err) {
	case domain.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrCodeForbidden:
		return http.StatusForbidden
	case domain.ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.NewInvalidArgumentError("Invalid request body")
	}
	return nil
}

// URLParamID parses a numeric chi URL parameter.
func URLParamID(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, domain.NewInvalidArgumentError("Invalid %s: %q", name, raw)
	}
	return uint(id), nil
}
