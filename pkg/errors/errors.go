package errors

import (
	"fmt"
	"strings"

	"github.com/lance2088/NiL.JS/pkg/source"
)

// EngineError is the interface implemented by engine-level errors, i.e. errors
// that are not script values. Script exceptions travel as *vm.Exception.
type EngineError interface {
	error
	Pos() Position
	Kind() string // e.g., "Syntax", "Configuration"
	// Message returns the specific error message without position info.
	Message() string
	Unwrap() error
}

// --- Concrete Error Types ---

// SyntaxError is reported by the parser collaborator. The engine turns it into
// a script-visible SyntaxError object when it surfaces during evaluation.
type SyntaxError struct {
	Position
	Msg   string
	Cause error
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("Syntax Error: %s", e.Msg)
	}
	return fmt.Sprintf("Syntax Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *SyntaxError) Pos() Position   { return e.Position }
func (e *SyntaxError) Kind() string    { return "Syntax" }
func (e *SyntaxError) Message() string { return e.Msg }
func (e *SyntaxError) Unwrap() error   { return e.Cause }
func (e *SyntaxError) CausedBy(cause error) *SyntaxError {
	e.Cause = cause
	return e
}

// ConfigurationError signals self-contradictory native metadata: duplicate
// member names, a force-instance method with an invalid signature, a type
// without constructors being constructed. It is fatal for the evaluation and
// never catchable by script code.
type ConfigurationError struct {
	Position
	Subject string // the native type or member the metadata belongs to
	Msg     string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("Configuration Error: %s", e.Msg)
	}
	return fmt.Sprintf("Configuration Error in %s: %s", e.Subject, e.Msg)
}
func (e *ConfigurationError) Pos() Position   { return e.Position }
func (e *ConfigurationError) Kind() string    { return "Configuration" }
func (e *ConfigurationError) Message() string { return e.Msg }
func (e *ConfigurationError) Unwrap() error   { return e.Cause }
func (e *ConfigurationError) CausedBy(cause error) *ConfigurationError {
	e.Cause = cause
	return e
}

// Configurationf builds a ConfigurationError for subject.
func Configurationf(subject, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Subject: subject, Msg: fmt.Sprintf(format, args...)}
}

// IsConfiguration reports whether err (or anything it wraps) is a ConfigurationError.
func IsConfiguration(err error) bool {
	for err != nil {
		if _, ok := err.(*ConfigurationError); ok {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Innermost follows the Unwrap chain of err down to the last error that has no
// further cause. Errors joining several causes are followed through their first one.
func Innermost(err error) error {
	for err != nil {
		switch u := err.(type) {
		case interface{ Unwrap() error }:
			next := u.Unwrap()
			if next == nil {
				return err
			}
			err = next
		case interface{ Unwrap() []error }:
			next := u.Unwrap()
			if len(next) == 0 || next[0] == nil {
				return err
			}
			err = next[0]
		default:
			return err
		}
	}
	return err
}

// --- Error Reporting ---

// Format renders an engine error with the offending source line and a marker,
// similar to what a command line front end would print.
func Format(src *source.Script, err EngineError) string {
	var b strings.Builder
	pos := err.Pos()
	where := src.DisplayPath()
	line := src.Line(pos.Line)
	if pos.Line == 0 || line == "" {
		fmt.Fprintf(&b, "%s Error in %s: %s\n", err.Kind(), where, err.Message())
		return b.String()
	}
	fmt.Fprintf(&b, "%s Error at %s:%d:%d: %s\n", err.Kind(), where, pos.Line, pos.Column, err.Message())
	fmt.Fprintf(&b, "  %s\n", strings.TrimRight(line, "\t "))
	col := pos.Column - 1
	if col < 0 {
		col = 0
	}
	fmt.Fprintf(&b, "  %s^\n", strings.Repeat(" ", col))
	return b.String()
}
