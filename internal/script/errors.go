package script

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

// ErrExecution is matched by every ExecError.
var ErrExecution = errors.New("script execution error")

// ExecError describes a fault raised while running a script, such as a
// syntax error, an uncaught exception or an interrupt.
type ExecError struct {
	// Message describes the fault.
	Message string

	// Line is the 1-based line where the fault was raised. Zero means unknown.
	Line int

	// Column is the 1-based column where the fault was raised.
	Column int

	// Err is the underlying error, if any.
	Err error
}

// Error returns the message, including the location when known.
func (e *ExecError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d, col %d)", e.Message, e.Line, e.Column)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ExecError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrExecution.
func (e *ExecError) Is(target error) bool {
	return target == ErrExecution
}

// toExecError converts an error returned by the runtime into an ExecError.
func toExecError(err error) *ExecError {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return &ExecError{
			Message: fmt.Sprintf("execution interrupted: %v", interrupted.Value()),
			Err:     err,
		}
	}

	var exc *goja.Exception
	if errors.As(err, &exc) {
		e := &ExecError{Message: exc.Value().String(), Err: err}
		if frames := exc.Stack(); len(frames) > 0 {
			pos := frames[0].Position()
			e.Line, e.Column = pos.Line, pos.Column
		}
		return e
	}

	return &ExecError{Message: err.Error(), Err: err}
}

// fromPanic converts a value recovered from a panic into an ExecError.
func fromPanic(r any) *ExecError {
	if err, ok := r.(error); ok {
		e := toExecError(err)
		if e.Message == err.Error() {
			e.Message = "internal error: " + e.Message
		}
		return e
	}
	return &ExecError{Message: fmt.Sprintf("internal error: %v", r)}
}
