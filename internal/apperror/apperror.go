// Package apperror defines the application's error taxonomy.
//
// Every failure the service layer can produce maps to one of six kinds,
// each with a fixed HTTP status. Handlers translate the kind to a status
// code and expose only the attached message, never the underlying cause.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrAuthentication   = errors.New("authentication failed")
	ErrAuthorization    = errors.New("not permitted")
	ErrNotFound         = errors.New("not found")
	ErrMalformed        = errors.New("malformed request")
	ErrConflict         = errors.New("conflicting edit")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// AppError carries a machine-checkable kind (Err), an HTTP status, and a
// message safe to show to clients.
type AppError struct {
	Err     error  // one of the sentinel kinds above
	Status  int    // HTTP status the kind maps to
	Message string // human-readable, client-safe
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Authentication reports bad or missing credentials (401).
func Authentication(message string) *AppError {
	return &AppError{Err: ErrAuthentication, Status: http.StatusUnauthorized, Message: message}
}

// Authorization reports an authenticated caller lacking permission (403).
func Authorization(message string) *AppError {
	return &AppError{Err: ErrAuthorization, Status: http.StatusForbidden, Message: message}
}

// NotFound reports an absent or invisible resource (404).
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// Malformed reports a validation failure (400).
func Malformed(message string) *AppError {
	return &AppError{Err: ErrMalformed, Status: http.StatusBadRequest, Message: message}
}

// MalformedAttributes aggregates per-attribute validation messages into a
// single Malformed error. Messages are keyed by attribute name and emitted
// in sorted attribute order so the output is deterministic.
func MalformedAttributes(violations map[string]string) *AppError {
	attrs := make([]string, 0, len(violations))
	for attr := range violations {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)

	parts := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		parts = append(parts, fmt.Sprintf("%s: %s", attr, violations[attr]))
	}
	return Malformed(strings.Join(parts, "; "))
}

// Conflict reports a uniqueness violation (409).
func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Status: http.StatusConflict, Message: message}
}

// MethodNotAllowed reports an operation the resource does not support (405).
func MethodNotAllowed(message string) *AppError {
	return &AppError{Err: ErrMethodNotAllowed, Status: http.StatusMethodNotAllowed, Message: message}
}

// Status returns the HTTP status for err, or 500 when err is not an AppError.
func Status(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
