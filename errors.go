// Package apikey provides prefixed API key generation and verification.
package apikey

import (
	"errors"
	"fmt"
)

// Error represents a library error with a structured error code.
type Error struct {
	Code    string // Error code (e.g., "PAK-OPTS-1001")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *Error) WithDetails(details string) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *Error) WithCause(cause error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsErrorCode checks if an error is an Error with the given code.
// If code is empty, it only checks whether the error is an Error.
func IsErrorCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		if code == "" {
			return true
		}
		return e.Code == code
	}
	return false
}

// ErrorCode extracts the error code from an error if it is an Error.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Option validation errors.
var (
	// ErrOptionsRequired indicates no generation options were provided.
	ErrOptionsRequired = NewError("PAK-OPTS-1000", "options is required")

	// ErrInvalidKeyPrefix indicates the key prefix is missing or malformed.
	ErrInvalidKeyPrefix = NewError("PAK-OPTS-1001", "invalid key prefix")

	// ErrInvalidShortTokenPrefix indicates the short token prefix is malformed.
	ErrInvalidShortTokenPrefix = NewError("PAK-OPTS-1002", "invalid short token prefix")

	// ErrInvalidShortTokenLength indicates the short token length is out of range.
	ErrInvalidShortTokenLength = NewError("PAK-OPTS-1003", "invalid short token length")

	// ErrInvalidLongTokenLength indicates the long token length is out of range.
	ErrInvalidLongTokenLength = NewError("PAK-OPTS-1004", "invalid long token length")
)

// Token errors.
var (
	// ErrMalformedToken indicates the token does not have the
	// {keyPrefix}_{shortToken}_{longToken} shape.
	ErrMalformedToken = NewError("PAK-TOKN-2000", "malformed token")
)

// Entropy errors.
var (
	// ErrEntropyRead indicates the system entropy source failed.
	// Generation never degrades to a weaker source; the operation fails.
	ErrEntropyRead = NewError("PAK-RAND-5000", "entropy read failed")
)

// Keyed scheme errors.
var (
	// ErrKeyRequired indicates a keyed scheme was constructed without a key.
	ErrKeyRequired = NewError("PAK-HMAC-1000", "hmac key is required")
)
