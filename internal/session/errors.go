package session

import (
	"errors"

	"github.com/itsmostafa/dataexplore/internal/loader"
	"github.com/itsmostafa/dataexplore/internal/script"
)

// Sentinel errors returned by Session operations.
var (
	// ErrUnsupportedFormat is returned by Load for a file suffix other than
	// .csv or .xlsx.
	ErrUnsupportedFormat = loader.ErrUnsupportedFormat

	// ErrLoadFailure is returned by Load when the file cannot be read or
	// parsed.
	ErrLoadFailure = errors.New("load failure")

	// ErrExecutionFault is returned by Run when the script raises a fault.
	ErrExecutionFault = script.ErrExecution

	// ErrClosed is returned by operations on a closed Session.
	ErrClosed = errors.New("session closed")
)

// ExecError describes a fault raised by a script.
type ExecError = script.ExecError

// LoadError describes a failed Load. It matches ErrUnsupportedFormat for a
// bad suffix and ErrLoadFailure for everything else.
type LoadError struct {
	// Path is the requested file path.
	Path string

	// Ext is the lower-cased file suffix, including the dot.
	Ext string

	// Err is the underlying cause.
	Err error
}

func (e *LoadError) Error() string {
	return e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrLoadFailure. ErrUnsupportedFormat is
// matched through Unwrap.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoadFailure && !errors.Is(e.Err, ErrUnsupportedFormat)
}
