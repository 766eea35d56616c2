package executor

import (
	"errors"
	"fmt"
)

var (
	// ErrExecution matches every ExecutionError.
	ErrExecution = errors.New("script execution failed")

	// ErrProfilingUnsupported is returned by executors without a profiler.
	ErrProfilingUnsupported = errors.New("profiling is not supported by this executor")
)

// ExecutionError reports a fault raised by the script engine while loading
// source or running a call.
type ExecutionError struct {
	Op    string // "load", "invoke", "set global"
	Label string // source label, entry point or global name
	Err   error
}

func (e *ExecutionError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Label, e.Err)
}

// Unwrap returns both the sentinel and the cause.
func (e *ExecutionError) Unwrap() []error {
	return []error{ErrExecution, e.Err}
}

// NewExecutionError wraps err. A nil err yields nil.
func NewExecutionError(op, label string, err error) error {
	if err == nil {
		return nil
	}
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return err
	}
	return &ExecutionError{Op: op, Label: label, Err: err}
}
