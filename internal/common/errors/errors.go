// Package errors provides the standardized error taxonomy for the relay's
// HTTP surface.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeSignatureInvalid ErrorCode = "SIGNATURE_INVALID"
	ErrCodeRemoteCallFailed ErrorCode = "REMOTE_CALL_FAILED"
	ErrCodeSMSSendFailed    ErrorCode = "SMS_SEND_FAILED"
	ErrCodeRouteNotFound    ErrorCode = "ROUTE_NOT_FOUND"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HTTPStatus maps an error code onto the relay's response status contract:
// 400 validation, 401 signature, 404 unmatched route, 500 everything else.
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeSignatureInvalid:
		return http.StatusUnauthorized
	case ErrCodeRouteNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// Error Constructors
// ==========================

// NewValidationError creates a 400 error whose message enumerates the
// offending fields.
func NewValidationError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingFieldsError creates a 400 error listing required fields that were
// absent from the request.
func NewMissingFieldsError(fields ...string) *StandardError {
	return NewValidationError(strings.Join(fields, " and ") + " are required")
}

// NewSignatureError creates a 401 error for a missing or invalid webhook
// signature.
func NewSignatureError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSignatureInvalid,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// NewRemoteCallError creates a 500 error carrying the remote store's own
// error string.
func NewRemoteCallError(message string) *StandardError {
	if message == "" {
		message = "remote API call failed"
	}
	return &StandardError{
		Code:      ErrCodeRemoteCallFailed,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// NewSMSSendError creates a 500 error for a failed provider send, carrying
// the provider's message when one was extracted.
func NewSMSSendError(message string, err error) *StandardError {
	e := &StandardError{
		Code:      ErrCodeSMSSendFailed,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// NewRouteNotFoundError creates the uniform 404 error.
func NewRouteNotFoundError() *StandardError {
	return &StandardError{
		Code:      ErrCodeRouteNotFound,
		Message:   "Not Found",
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError creates a sanitized 500 error; the underlying detail goes
// to logs, not to the response body.
func NewInternalError(err error) *StandardError {
	e := &StandardError{
		Code:      ErrCodeInternal,
		Message:   "internal error",
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// Normalize ensures we always have a StandardError to respond with.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return NewInternalError(err)
}
