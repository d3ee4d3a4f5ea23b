// Package errors carries coded errors across the pipeline, server, and CLI.
//
// Codes give machine-readable identity to failures so the HTTP layer can map
// them to status codes and the CLI can decide what to show:
//
//	err := errors.New(errors.ErrCodeInvalidGraph, "duplicate node %q", id)
//	if errors.Is(err, errors.ErrCodeInvalidGraph) { ... }
//	err = errors.Wrap(errors.ErrCodeStore, cause, "fetch article %q", name)
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code identifies an error category.
type Code string

const (
	// Validation failures in user-supplied input.
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidGraph   Code = "INVALID_GRAPH"
	ErrCodeInvalidPhysics Code = "INVALID_PHYSICS"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"

	// Missing resources.
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeArticleNotFound Code = "ARTICLE_NOT_FOUND"

	// Backend failures.
	ErrCodeStore Code = "STORE_ERROR"
	ErrCodeCache Code = "CACHE_ERROR"

	// Everything else.
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error pairs a Code with a message and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause to the stdlib errors helpers.
func (e *Error) Unwrap() error { return e.Cause }

// New creates a coded error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a coded error around an existing cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the chain of err contains an *Error with the given code.
func Is(err error, code Code) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Code == code
}

// GetCode returns the code of the first *Error in the chain, or
// ErrCodeInternal when there is none.
func GetCode(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}
