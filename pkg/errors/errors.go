package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrUnauthorized        = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrTokenExpired        = New("TOKEN_EXPIRED", http.StatusUnauthorized, "credential expired, sign in again")
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrUpstreamUnset       = New("UPSTREAM_UNCONFIGURED", http.StatusInternalServerError, "proxy misconfigured: UPSTREAM_BASE_URL (or API_BASE_URL / API_BASE) is missing")
	ErrMissingPath         = New("MISSING_PATH", http.StatusBadRequest, "missing path (e.g. /api/proxy/exams/meta)")
	ErrUpstreamFailure     = New("UPSTREAM_FAILURE", http.StatusInternalServerError, "proxy crashed")
	ErrSessionNotFound     = New("SESSION_NOT_FOUND", http.StatusNotFound, "reservation session not found or expired")
	ErrHandoffExpired      = New("HANDOFF_EXPIRED", http.StatusGone, "selection hand-off missing or expired, start over from the selection step")
	ErrStateOrder          = New("STATE_ORDER", http.StatusConflict, "earlier selection tiers must be chosen first")
	ErrStaleGeneration     = New("STALE_GENERATION", http.StatusConflict, "exam list response superseded by a newer selection")
	ErrEmptySelection      = New("EMPTY_SELECTION", http.StatusBadRequest, "select at least one exam to print")
	ErrReceiptTokenInvalid = New("RECEIPT_TOKEN_INVALID", http.StatusNotFound, "receipt link is invalid")
	ErrReceiptExpired      = New("RECEIPT_EXPIRED", http.StatusGone, "receipt link has expired")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
