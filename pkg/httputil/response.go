package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/catalog-search/pkg/errors"
	"github.com/utafrali/catalog-search/pkg/logger"
)

// Response is the JSON envelope of every API response.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse is the error member of Response.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a 200 response wrapping data in the envelope.
func WriteData(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Data: data})
}

// WriteError maps err to a status code and writes the error envelope.
// Server-side failures are logged with the request-scoped logger when the
// RequestLogger middleware is mounted, else with fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	status, code, message := describe(err)

	switch {
	case status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable:
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	case status == http.StatusServiceUnavailable:
		l.WarnContext(r.Context(), "dependency unavailable",
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{
		Error: &ErrorResponse{Code: code, Message: message, RequestID: requestID},
	})
}

func describe(err error) (int, string, string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Status, appErr.Code, appErr.Message
	}

	switch status := apperrors.HTTPStatus(err); status {
	case http.StatusNotFound:
		return status, "NOT_FOUND", "resource not found"
	case http.StatusBadRequest:
		return status, "INVALID_INPUT", err.Error()
	case http.StatusServiceUnavailable:
		return status, "SERVICE_UNAVAILABLE", "service temporarily unavailable"
	default:
		internal := apperrors.Internal(err)
		return internal.Status, internal.Code, internal.Message
	}
}
