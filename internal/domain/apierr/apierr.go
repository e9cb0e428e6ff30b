// Package apierr defines the error taxonomy shared by the composite service
// and its backend integrations.
package apierr

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Kind classifies a domain error.
type Kind int

const (
	// Unexpected covers transport, decoding and unclassified backend failures.
	Unexpected Kind = iota
	// InvalidInput means caller-supplied data was rejected.
	InvalidInput
	// NotFound means the referenced record does not exist.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case NotFound:
		return "not found"
	default:
		return "unexpected"
	}
}

// Error is a classified failure with a human-readable message and the
// request path it originated from.
type Error struct {
	Kind    Kind
	Message string
	Path    string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Invalid returns an InvalidInput error with a formatted message.
func Invalid(format string, args ...any) *Error {
	return New(InvalidInput, fmt.Sprintf(format, args...))
}

// Missing returns a NotFound error with a formatted message.
func Missing(format string, args ...any) *Error {
	return New(NotFound, fmt.Sprintf(format, args...))
}

// Wrap classifies err as Unexpected, keeping it as the cause.
func Wrap(err error, path string) *Error {
	return &Error{Kind: Unexpected, Message: err.Error(), Path: path, Err: err}
}

// KindOf reports the Kind of err. Errors that are not *Error are Unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
