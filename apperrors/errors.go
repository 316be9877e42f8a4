package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents an application error carrying the HTTP status it maps to.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets sentinel comparison survive Wrap: two *Error values match when
// their code and message match.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap attaches context to a sentinel without losing its HTTP mapping.
func Wrap(sentinel *Error, err error) *Error {
	return &Error{
		Code:    sentinel.Code,
		Message: sentinel.Message,
		Err:     err,
	}
}

// Validation errors (caller's fault, never retried)
var (
	ErrInvalidOrder   = New(http.StatusBadRequest, "Invalid order", nil)
	ErrInvalidRequest = New(http.StatusBadRequest, "Invalid request", nil)
)

// Conflict / idempotency errors
var (
	ErrDuplicateOrder   = New(http.StatusConflict, "Order already exists", nil)
	ErrConflict         = New(http.StatusConflict, "Conflicting payload for existing order", nil)
	ErrAlreadyInitiated = New(http.StatusConflict, "An active payment already exists for this order", nil)
)

// Lookup errors
var (
	ErrOrderNotFound  = New(http.StatusNotFound, "Order not found", nil)
	ErrIntentNotFound = New(http.StatusNotFound, "Payment not found", nil)
)

// Security errors
var ErrInvalidSignature = New(http.StatusUnauthorized, "Invalid webhook signature", nil)

// Gateway errors
var (
	ErrGatewayUnavailable = New(http.StatusBadGateway, "Payment gateway unavailable", nil)
	ErrGatewayRejected    = New(http.StatusBadGateway, "Payment gateway rejected the request", nil)
)

// StatusCode returns the HTTP status an error maps to at the boundary.
// Unknown error types map to 500 so no driver error leaks its own shape.
func StatusCode(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the message safe to hand to the caller.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}
