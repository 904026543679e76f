// Package badreq defines the single error type for caller-recoverable
// conditions: a behavior that cannot be found, a bind that conflicts,
// a branch that may not be bound. Infrastructure failures (I/O, missing
// git binary) are ordinary wrapped errors and never use this type.
package badreq

import (
	"errors"
	"fmt"
)

// Kind classifies a bad request.
type Kind string

const (
	KindNotFound      Kind = "not found"
	KindAmbiguous     Kind = "ambiguous"
	KindConflict      Kind = "conflict"
	KindAlreadyExists Kind = "already exists"
	KindInvalidInput  Kind = "invalid input"
)

// Error is raised at the point of detection and caught once at the CLI boundary.
type Error struct {
	Kind    Kind
	Message string
	// Matches enumerates the alternatives (for NotFound) or the
	// colliding candidates (for Ambiguous) so the caller can pick one.
	Matches []string
	// Hint is a single suggestion on how to resolve the condition.
	Hint string
}

func (e *Error) Error() string {
	return e.Message
}

// WithHint returns the error with its hint set.
func (e *Error) WithHint(format string, a ...any) *Error {
	e.Hint = fmt.Sprintf(format, a...)
	return e
}

// WithMatches returns the error with its match list set.
func (e *Error) WithMatches(matches []string) *Error {
	e.Matches = matches
	return e
}

func newError(kind Kind, format string, a ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

func NotFound(format string, a ...any) *Error {
	return newError(KindNotFound, format, a...)
}

func Ambiguous(format string, a ...any) *Error {
	return newError(KindAmbiguous, format, a...)
}

func Conflict(format string, a ...any) *Error {
	return newError(KindConflict, format, a...)
}

func AlreadyExists(format string, a ...any) *Error {
	return newError(KindAlreadyExists, format, a...)
}

func InvalidInput(format string, a ...any) *Error {
	return newError(KindInvalidInput, format, a...)
}

// As extracts a bad request from err, following wrapped errors.
func As(err error) (*Error, bool) {
	var br *Error
	if errors.As(err, &br) {
		return br, true
	}
	return nil, false
}

// Is reports whether err is a bad request of the given kind.
func Is(err error, kind Kind) bool {
	br, ok := As(err)
	return ok && br.Kind == kind
}
