package vm

import (
	"errors"
	"fmt"
)

// Exception is a thrown script value travelling as a Go error.
type Exception struct {
	Value Value
	Cause error // native error the exception was derived from, if any
}

func (e *Exception) Error() string { return e.Value.String() }
func (e *Exception) Unwrap() error { return e.Cause }

// Throw wraps an arbitrary script value as an exception.
func Throw(v Value) error {
	return &Exception{Value: v.Plain()}
}

// AsException returns the script exception carried by err, if any.
func AsException(err error) (*Exception, bool) {
	var exc *Exception
	if errors.As(err, &exc) {
		return exc, true
	}
	return nil, false
}

// ErrorKind names the error constructors of a realm.
type ErrorKind string

const (
	KindError          ErrorKind = "Error"
	KindTypeError      ErrorKind = "TypeError"
	KindReferenceError ErrorKind = "ReferenceError"
	KindSyntaxError    ErrorKind = "SyntaxError"
)

// NewTypeError constructs a TypeError exception error for builtin helpers to return
func (c *Context) NewTypeError(format string, args ...any) error {
	return c.realm.NewError(KindTypeError, fmt.Sprintf(format, args...))
}

// NewReferenceError constructs a ReferenceError exception error
func (c *Context) NewReferenceError(format string, args ...any) error {
	return c.realm.NewError(KindReferenceError, fmt.Sprintf(format, args...))
}

// NewSyntaxError constructs a SyntaxError exception error for the parser collaborator
func (c *Context) NewSyntaxError(format string, args ...any) error {
	return c.realm.NewError(KindSyntaxError, fmt.Sprintf(format, args...))
}
