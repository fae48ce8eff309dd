package common

import (
	"errors"
	"net/http"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// ErrValidation builds a 400 validation error.
func ErrValidation(message string) *AppError {
	return NewAppError("VALIDATION_ERROR", message, http.StatusBadRequest, nil)
}

// ErrNotFound builds a 404 error for the named resource.
func ErrNotFound(resource string) *AppError {
	return NewAppError("NOT_FOUND", resource+" not found", http.StatusNotFound, nil)
}

// ErrUnauthorized builds a generic 401 error.
func ErrUnauthorized() *AppError {
	return NewAppError("UNAUTHORIZED", "unauthorized", http.StatusUnauthorized, nil)
}

// ErrForbidden builds a 403 error with the provided message.
func ErrForbidden(message string) *AppError {
	return NewAppError("FORBIDDEN", message, http.StatusForbidden, nil)
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// WriteError renders err through the canonical error envelope, mapping
// AppErrors to their status and everything else to HTTP 500.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}
