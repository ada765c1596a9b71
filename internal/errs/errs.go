// Package errs defines the typed error kinds shared by the service layer.
//
// Each kind maps to a stable HTTP status class so the transport layer can
// translate failures without inspecting error strings. Services wrap lower-level
// errors (storage, domain model) into one of these kinds at the boundary.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a service-level failure.
type Kind int

const (
	// KindInternal is an unexpected failure (storage, programming error).
	KindInternal Kind = iota
	// KindNotFound means the expense, participant, colocation, or user does not exist.
	KindNotFound
	// KindForbidden means the caller is not allowed to perform the action.
	KindForbidden
	// KindConflict means the operation clashes with current state
	// (already validated, already a member, expense already settled).
	KindConflict
	// KindInvalid means the input itself is unacceptable.
	KindInvalid
	// KindUnauthenticated means no valid caller identity was supplied.
	KindUnauthenticated
)

// Error is a service error with a kind and an optional wrapped cause.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Kind returns the classification of this error.
func (e *Error) Kind() Kind { return e.kind }

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, err error, msg string) error {
	return &Error{kind: kind, msg: msg, err: err}
}

// NotFound creates a KindNotFound error.
func NotFound(format string, args ...any) error { return New(KindNotFound, format, args...) }

// Forbidden creates a KindForbidden error.
func Forbidden(format string, args ...any) error { return New(KindForbidden, format, args...) }

// Conflict creates a KindConflict error.
func Conflict(format string, args ...any) error { return New(KindConflict, format, args...) }

// Invalid creates a KindInvalid error.
func Invalid(format string, args ...any) error { return New(KindInvalid, format, args...) }

// Unauthenticated creates a KindUnauthenticated error.
func Unauthenticated(format string, args ...any) error {
	return New(KindUnauthenticated, format, args...)
}

// Internal wraps an unexpected failure.
func Internal(err error, msg string) error { return Wrap(KindInternal, err, msg) }

// KindOf extracts the kind from err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.kind == kind
}

// HTTPStatus maps an error to its HTTP status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindInvalid:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
