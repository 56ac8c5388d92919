// Package errs defines the error categories shared across the pipeline:
// malformed input, operations on uninitialized components, and remote
// service failures. Expected data loss (dropped rows) is reported through
// filter statistics, not through these types.
package errs

import (
	"errors"
	"fmt"
)

// InputError reports malformed or missing required fields in raw data.
// It fails the whole batch; no partial batch is accepted.
type InputError struct {
	Column string // offending column or field, if known
	Msg    string
}

func (e *InputError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("invalid input: column %q: %s", e.Column, e.Msg)
	}
	return fmt.Sprintf("invalid input: %s", e.Msg)
}

// NewInputError creates an InputError for a named column.
func NewInputError(column, format string, args ...any) *InputError {
	return &InputError{Column: column, Msg: fmt.Sprintf(format, args...)}
}

// IsInput reports whether err is (or wraps) an InputError.
func IsInput(err error) bool {
	var e *InputError
	return errors.As(err, &e)
}

// StateError reports an operation against an unopened index or an
// uninitialized component. Fatal to the current call.
type StateError struct {
	Op  string
	Msg string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

// NewStateError creates a StateError for the given operation.
func NewStateError(op, format string, args ...any) *StateError {
	return &StateError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// IsState reports whether err is (or wraps) a StateError.
func IsState(err error) bool {
	var e *StateError
	return errors.As(err, &e)
}

// RemoteError reports an embedding or completion service that is
// unreachable, rate-limited, or returned a malformed payload. The core
// never retries automatically; retrying is the caller's decision.
type RemoteError struct {
	Service string // "embedding" or "llm"
	Status  int    // HTTP status, 0 when transport-level
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s service: status %d: %v", e.Service, e.Status, e.Err)
	}
	return fmt.Sprintf("%s service: %v", e.Service, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// NewRemoteError wraps err as a RemoteError for the named service.
func NewRemoteError(service string, status int, err error) *RemoteError {
	return &RemoteError{Service: service, Status: status, Err: err}
}

// IsRemote reports whether err is (or wraps) a RemoteError.
func IsRemote(err error) bool {
	var e *RemoteError
	return errors.As(err, &e)
}
