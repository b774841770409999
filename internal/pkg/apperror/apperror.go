package apperror

import (
	"errors"
	"net/http"
)

// AppError is a domain error carrying the HTTP status code that best describes its kind.
// The code is also how callers tell validation, not-found and conflict failures apart.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404, 409)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation creates a 400 error for malformed input.
func Validation(message string) *AppError {
	return New(http.StatusBadRequest, message)
}

// NotFound creates a 404 error for an absent entity.
func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message)
}

// Conflict creates a 409 error for requests rejected by an invariant.
func Conflict(message string) *AppError {
	return New(http.StatusConflict, message)
}

// CodeOf returns the status code of the first AppError in err's chain, or 500.
func CodeOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	return CodeOf(err) == http.StatusBadRequest
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	return CodeOf(err) == http.StatusNotFound
}

// IsConflict reports whether err rejects the request on an invariant.
func IsConflict(err error) bool {
	return CodeOf(err) == http.StatusConflict
}
