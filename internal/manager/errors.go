package manager

import (
	"errors"
	"fmt"
)

// pathNotFoundError reports a serving path that does not name a model.
type pathNotFoundError struct{ path string }

func (e pathNotFoundError) Error() string { return "path not found: " + e.path }

// ErrPathNotFound returns an error for a serving path that does not exist.
func ErrPathNotFound(path string) error { return pathNotFoundError{path: path} }

// IsPathNotFound reports whether err indicates a missing serving path.
func IsPathNotFound(err error) bool {
	var e pathNotFoundError
	return errors.As(err, &e)
}

// noSessionError is returned by session queries when nothing is loaded.
type noSessionError struct{}

func (noSessionError) Error() string { return "no session loaded" }

// ErrNoSession is returned when an operation needs a loaded session.
var ErrNoSession error = noSessionError{}

// IsNoSession reports whether err indicates that no session is loaded.
func IsNoSession(err error) bool {
	var e noSessionError
	return errors.As(err, &e)
}

// badRequestError signals a payload the caller can fix (invalid JSON, wrong
// shape, missing inputs).
type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

// ErrBadRequest constructs a badRequestError.
func ErrBadRequest(format string, a ...any) error {
	return badRequestError{msg: fmt.Sprintf(format, a...)}
}

// IsBadRequest reports whether err indicates an invalid caller payload.
func IsBadRequest(err error) bool {
	var e badRequestError
	return errors.As(err, &e)
}

// runtimeError wraps a failure reported by the model runtime while loading
// or executing.
type runtimeError struct {
	op  string
	err error
}

func (e runtimeError) Error() string { return e.op + ": " + e.err.Error() }

func (e runtimeError) Unwrap() error { return e.err }

// ErrRuntime wraps err as a runtime failure of op.
func ErrRuntime(op string, err error) error { return runtimeError{op: op, err: err} }

// IsRuntimeError reports whether err originated in the model runtime.
func IsRuntimeError(err error) bool {
	var e runtimeError
	return errors.As(err, &e)
}
