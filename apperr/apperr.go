// path: apperr/apperr.go

// Package apperr defines the error kinds surfaced to API callers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the client-facing error name used for branching.
type Kind string

const (
	Validation     Kind = "ValidationError"
	Authentication Kind = "AuthenticationError"
	Permission     Kind = "PermissionError"
	NotFound       Kind = "NotFoundError"
	Conflict       Kind = "ConflictError"
	Unknown        Kind = "UnknownError"
)

// Error is a kinded error with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of kind k.
func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to err. A nil err returns nil.
func Wrap(err error, k Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Message: msg, Err: err}
}

// KindOf resolves err to a Kind, defaulting to Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err is of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Message returns the message of the outermost kinded error, or a generic
// fallback so collaborator internals never leak to clients.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

// HTTPStatus maps a kind to the status code used by the HTTP layer.
func HTTPStatus(k Kind) int {
	switch k {
	case Validation:
		return http.StatusBadRequest
	case Authentication:
		return http.StatusUnauthorized
	case Permission:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
