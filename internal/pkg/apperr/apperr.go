// Package apperr classifies service failures so handlers can map them to
// HTTP statuses without inspecting error strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind groups failures by how the caller should react.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindExternal
	KindConflict
)

// Error carries a classified failure with a message safe to show the caller.
// The wrapped cause, if any, stays internal.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// External marks a failure of an outside system (LLM, embedding API,
// storage). The message should stay short and actionable; the cause keeps
// the detail for logs.
func External(message string, cause error) *Error {
	return &Error{Kind: KindExternal, Message: message, cause: cause}
}

// KindOf extracts the classification from an error chain, defaulting to
// KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-safe message, or a generic one for
// unclassified errors so internals never leak.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}
