// Package domainerrors carries the categorized error type shared by every
// service. Codes decide the transport status; messages are stable identifiers
// that callers can match on.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport mapping.
type Code string

const (
	CodeInternal           Code = "internal_error"
	CodeInvariantViolation Code = "invariant_violation"
	CodeValidation         Code = "validation_error"
	CodeUnauthorized       Code = "unauthorized"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeForbidden          Code = "forbidden"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
	CodeUnavailable        Code = "unavailable"
)

// Error is a domain error with a code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same code and message, so declared
// error values keep matching after being wrapped.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a domain error.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether any domain error in the chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is is shorthand for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost domain code, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
