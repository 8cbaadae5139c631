// Package handler is the HTTP layer: it builds request descriptors for the
// service operations and translates their results and errors to JSON.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nhollis/inkwell/internal/apperror"
)

// ErrorResponse is the uniform error body for every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable kind, e.g. "not_found"
	Message string `json:"message"` // human-readable description
}

// writeJSON sends data with the given status. Headers must be written
// before the body, so the order here is fixed.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a service error to its HTTP status and kind name.
// Errors without an application kind are reported as a generic 500 so
// internal details never reach clients.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	kind := "internal_error"
	switch {
	case errors.Is(err, apperror.ErrAuthentication):
		kind = "authentication_failure"
	case errors.Is(err, apperror.ErrAuthorization):
		kind = "authorization_failure"
	case errors.Is(err, apperror.ErrNotFound):
		kind = "not_found"
	case errors.Is(err, apperror.ErrMalformed):
		kind = "malformed_request"
	case errors.Is(err, apperror.ErrConflict):
		kind = "conflicting_edit"
	case errors.Is(err, apperror.ErrMethodNotAllowed):
		kind = "method_not_allowed"
	}

	writeJSON(w, appErr.Status, ErrorResponse{Error: kind, Message: appErr.Message})
}
