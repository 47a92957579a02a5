package app

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a command failure for transport mapping.
type ErrorKind string

const (
	KindNotAuthenticated ErrorKind = "not_authenticated"
	KindNotFound         ErrorKind = "not_found"
	KindConflict         ErrorKind = "conflict"
	KindNotYourTurn      ErrorKind = "not_your_turn"
	KindIllegalMove      ErrorKind = "illegal_move"
	KindTransientStore   ErrorKind = "transient_store"
	KindFatal            ErrorKind = "fatal"
)

// Error is a classified command error. Handlers return these; transports map
// the kind to a status code and never leak raw store errors to callers.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a missing match, hand or trick for the phase.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a violated state precondition.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NotYourTurn reports a command from a seat that is not the current actor.
func NotYourTurn(format string, args ...any) *Error {
	return &Error{Kind: KindNotYourTurn, Message: fmt.Sprintf(format, args...)}
}

// IllegalMove reports a malformed or rule-breaking bid or play.
func IllegalMove(format string, args ...any) *Error {
	return &Error{Kind: KindIllegalMove, Message: fmt.Sprintf(format, args...)}
}

// Transient wraps a retryable store or pub/sub failure.
func Transient(msg string, err error) *Error {
	return &Error{Kind: KindTransientStore, Message: msg, Err: err}
}

// Fatal reports an invariant violation detected mid-flight.
func Fatal(format string, args ...any) *Error {
	return &Error{Kind: KindFatal, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the classification from an error chain; unclassified
// errors count as transient store faults.
func KindOf(err error) ErrorKind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindTransientStore
}

// MessageOf extracts the user-facing message from an error chain.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}
