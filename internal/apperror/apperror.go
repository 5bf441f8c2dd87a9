// Package apperror defines the error taxonomy shared by the domain services and
// the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the request boundary.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindUnauthenticated
	KindForbidden
	KindConflict
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindStore:
		return "store"
	}
	return "unknown"
}

// Error is a classified error. A sentinel with an empty Message matches every
// error of the same Kind under errors.Is.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrStore           = &Error{Kind: KindStore}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a kind sentinel matching e.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// New returns an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation returns a formatted validation error.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns "<resource> not found".
func NotFound(resource string) error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// Conflict returns a conflict error.
func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// Unauthenticated returns an authentication failure.
func Unauthenticated(message string) error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// Forbidden returns an authorization failure.
func Forbidden(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Store wraps a persistence failure. Classified errors pass through unchanged.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	return &Error{Kind: KindStore, Message: op, Err: err}
}

// KindOf returns the kind of err, or KindStore for unclassified errors.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindStore
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the message safe to show to API clients. Store
// failures never expose their cause.
func PublicMessage(err error) string {
	var classified *Error
	if !errors.As(err, &classified) || classified.Kind == KindStore {
		return "internal error"
	}
	if classified.Message == "" {
		return classified.Kind.String()
	}
	return classified.Message
}
