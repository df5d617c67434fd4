// Package errors carries infrastructure failures (store, transport) with the
// operation and component they happened in.
//
// Validation failures of a problem are optimization errors and never pass
// through this package, so an *Error anywhere in a chain marks the failure as
// the service's fault rather than the caller's.
package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
)

// Error is an infrastructure failure with context and stack trace.
type Error struct {
	// The underlying error that was returned
	Err error
	// A human-readable message describing the error
	Message string
	// The operation that was being performed when the error occurred
	Operation string
	// The component or package where the error occurred
	Component string
	// The stack trace
	Stack []string
}

// Error renders "message: operation=op, component=c: cause", skipping empty parts.
func (e *Error) Error() string {
	var b strings.Builder
	sep := func(s string) {
		if b.Len() > 0 {
			b.WriteString(s)
		}
	}

	b.WriteString(e.Message)
	if e.Operation != "" {
		sep(": ")
		b.WriteString("operation=" + e.Operation)
	}
	if e.Component != "" {
		sep(", ")
		b.WriteString("component=" + e.Component)
	}
	if e.Err != nil {
		sep(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Fields returns the error context as log fields.
func (e *Error) Fields() map[string]interface{} {
	fields := map[string]interface{}{"error": e.Error()}
	if e.Operation != "" {
		fields["operation"] = e.Operation
	}
	if e.Component != "" {
		fields["component"] = e.Component
	}
	if len(e.Stack) > 0 {
		fields["origin"] = e.Stack[0]
	}
	return fields
}

// E wraps err with the operation and component it failed in.
func E(op, component string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Err:       err,
		Operation: op,
		Component: component,
		Stack:     getStackTrace(),
	}
}

// Wrap wraps an error with additional context.
// An *Error is copied, never modified in place, and keeps its stack.
func Wrap(err error, msg string) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if existing, ok := err.(*Error); ok {
		copied := *existing
		e = &copied
	} else {
		e = &Error{
			Err:   err,
			Stack: getStackTrace(),
		}
	}

	if msg != "" {
		e.Message = msg
	}
	return e
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Find returns the outermost *Error in err's chain.
func Find(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// getStackTrace returns the current stack trace as a slice of strings.
func getStackTrace() []string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:]) // Skip runtime.Callers, getStackTrace, and the constructor
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	stack := make([]string, 0, n)

	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") && !strings.Contains(frame.File, "internal/errors") {
			stack = append(stack, fmt.Sprintf("%s\n\t%s:%d", frame.Function, frame.File, frame.Line))
		}
		if !more {
			break
		}
	}

	return stack
}
