// Package errors augments the standard errors
// provided by fmt (https://golang.org/src/fmt/errors.go)
// with sentinel errors which may be decorated with details
// or wrap a cause without resorting to fmt.Errorf("%w", err).
package errors

import (
	stderr "errors"
	"fmt"
)

var _ error = New("")

// New Error
func New(msg string) *Error {
	return &Error{msg: msg}
}

// Error augments the standard error interface with Wrap and WithDetails methods.
//
// The main difference with github.com/pkg/errors is that we are wrapping
// errors from errors, not from text.
//
// Wrap and WithDetails return a copy: sentinels declared as package variables
// are never mutated, and the copy still matches its sentinel with Is.
type Error struct {
	msg    string
	err    error
	origin *Error
}

// Error message, followed by the message of the wrapped error if any
func (e *Error) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

// Unwrap nested error
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// Wrap a nested error
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err
	return c
}

// WithDetails appends some formatted details to the error message
func (e *Error) WithDetails(format string, args ...interface{}) *Error {
	c := e.clone()
	c.msg = e.msg + ": " + fmt.Sprintf(format, args...)
	return c
}

// Is of some error type?
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.sentinel() == t.sentinel()
}

func (e *Error) clone() *Error {
	return &Error{msg: e.msg, err: e.err, origin: e.sentinel()}
}

func (e *Error) sentinel() *Error {
	if e.origin != nil {
		return e.origin
	}
	return e
}

// As finds the first error in err's chain that matches target, and if so, sets target to that error value and returns true.
// (a shortcut to standard lib errors.As)
func As(err error, target interface{}) bool {
	return stderr.As(err, target)
}

// Is reports whether any error in err's chain matches target
// (a shortcut to standard lib errors.Is)
func Is(err, target error) bool {
	return stderr.Is(err, target)
}
