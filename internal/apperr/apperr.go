// Package apperr classifies failures into the categories the HTTP API reports.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Codes reported in the "code" field of error responses.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodePaymentRequired = "PAYMENT_REQUIRED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeUnavailable     = "SERVICE_UNAVAILABLE"
	CodeInternal        = "INTERNAL_ERROR"
)

// Error is a classified failure. Message is safe to show to API callers;
// Err carries the underlying cause for logs.
type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error with an explicit code and status.
func New(code, message string, status int, err error) *Error {
	return &Error{Code: code, Message: message, Status: status, Err: err}
}

func Validation(format string, args ...any) *Error {
	return New(CodeValidation, fmt.Sprintf(format, args...), http.StatusBadRequest, nil)
}

func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func PaymentRequired(message string) *Error {
	return New(CodePaymentRequired, message, http.StatusPaymentRequired, nil)
}

func Forbidden(message string) *Error {
	return New(CodeForbidden, message, http.StatusForbidden, nil)
}

// NotFound reports a missing resource, e.g. NotFound("property").
func NotFound(resource string) *Error {
	return New(CodeNotFound, resource+" not found", http.StatusNotFound, nil)
}

func Conflict(message string) *Error {
	return New(CodeConflict, message, http.StatusConflict, nil)
}

func TooManyRequests(message string) *Error {
	return New(CodeTooManyRequests, message, http.StatusTooManyRequests, nil)
}

func Unavailable(message string) *Error {
	return New(CodeUnavailable, message, http.StatusServiceUnavailable, nil)
}

func Internal(message string, err error) *Error {
	return New(CodeInternal, message, http.StatusInternalServerError, err)
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries an *Error with the given code.
func Is(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// StatusOf returns the HTTP status for err, 500 for unclassified errors.
func StatusOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
