// Package apperr defines the error taxonomy shared by the REST and GraphQL
// surfaces. Every error that crosses a transport boundary is either one of
// these kinds or gets folded into Internal with a generic message.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	// Validation means the request payload failed field-level checks.
	Validation Kind = iota + 1
	// Unauthorized means the credential is missing, invalid, or wrong.
	Unauthorized
	// Forbidden means the caller is authenticated but not the owner.
	Forbidden
	// NotFound means the addressed resource does not resolve.
	NotFound
	// Internal covers store, filesystem, and unexpected failures.
	Internal
)

// FieldError describes a single failed validation check.
type FieldError struct {
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
}

// Error carries a taxonomy kind, a client-safe message, and optional
// field-level detail. The wrapped cause never reaches the client.
type Error struct {
	Kind    Kind
	Message string
	Data    []FieldError
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the kind to its HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case Validation:
		return http.StatusUnprocessableEntity
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// NewValidation creates a Validation error with field detail.
func NewValidation(message string, fields ...FieldError) *Error {
	return &Error{Kind: Validation, Message: message, Data: fields}
}

// NewUnauthorized creates an Unauthorized error.
func NewUnauthorized(message string) *Error {
	return &Error{Kind: Unauthorized, Message: message}
}

// NewForbidden creates a Forbidden error.
func NewForbidden(message string) *Error {
	return &Error{Kind: Forbidden, Message: message}
}

// NewNotFound creates a NotFound error.
func NewNotFound(message string) *Error {
	return &Error{Kind: NotFound, Message: message}
}

// NewInternal creates an Internal error carrying its cause. The message is
// what the client sees; the cause stays server-side.
func NewInternal(message string, err error) *Error {
	return &Error{Kind: Internal, Message: message, Err: err}
}

// From extracts the taxonomy error from err, or wraps err as Internal with a
// generic message when it carries no taxonomy information.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Kind: Internal, Message: "Internal server error", Err: err}
}
