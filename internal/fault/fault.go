// Package fault defines the error taxonomy shared by every operation: the
// handler layer maps kinds onto HTTP statuses, and workflows decide what the
// caller is allowed to learn by picking the kind.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	// Internal is the zero value: unexpected failures, details logged only.
	Internal Kind = iota
	// Validation is malformed or missing input; carries field-level detail.
	Validation
	// Unauthenticated is a missing, invalid, or expired credential.
	Unauthenticated
	// Forbidden means authenticated but insufficient role or ownership.
	Forbidden
	// NotFound means a referenced entity does not exist.
	NotFound
	// Conflict is a uniqueness violation surfaced from the storage backstop.
	Conflict
	// Dependency is a mail or storage collaborator failure.
	Dependency
)

// Error carries a kind, a caller-safe message, and optional per-field detail.
type Error struct {
	Kind   Kind
	Msg    string
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Invalid builds a Validation error with field-level detail.
func Invalid(fields map[string]string) *Error {
	return &Error{Kind: Validation, Msg: "validation failed", Fields: fields}
}

// KindOf extracts the kind from err, defaulting to Internal.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
