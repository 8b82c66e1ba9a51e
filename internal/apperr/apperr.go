// Package apperr defines the error taxonomy shared by the journal services
// and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind string

const (
	KindValidation      Kind = "VALIDATION_ERROR"
	KindMissingImage    Kind = "MISSING_IMAGE"
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindInvalidToken    Kind = "INVALID_TOKEN"
	KindExpiredToken    Kind = "EXPIRED_TOKEN"
	KindNotFound        Kind = "NOT_FOUND"
	KindDuplicateKey    Kind = "DUPLICATE_KEY"
	KindRateLimited     Kind = "RATE_LIMITED"
	KindFatal           Kind = "INTERNAL_ERROR"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified error with a client-safe message.
type Error struct {
	cause   error
	Kind    Kind
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Cause returns the wrapped internal error, if any.
func (e *Error) Cause() error {
	return e.cause
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Validation builds a validation error listing every rejected field.
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

// NotFound builds the generic miss error for a resource.
func NotFound(resource string) *Error {
	return New(KindNotFound, resource+" not found")
}

// Fatal wraps an infrastructure failure; message stays generic.
func Fatal(message string, cause error) *Error {
	return Wrap(KindFatal, message, cause)
}

// KindOf returns the kind of err, or KindFatal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindFatal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// HTTPStatus maps a kind to its response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindMissingImage, KindDuplicateKey:
		return http.StatusBadRequest
	case KindUnauthenticated, KindInvalidToken, KindExpiredToken:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
