package ops

import (
	"errors"
	"fmt"
)

// ValidationError indicates a user-input problem: nothing was changed and the
// user may retry with different parameters.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Op == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// OperationError indicates an executor failed for a reason other than user
// input, such as a statistic that is undefined on an all-Missing column.
type OperationError struct {
	Op     string
	Column string
	Err    error
}

func (e *OperationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s failed on column %q: %v", e.Op, e.Column, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// ErrNoValues is wrapped by OperationError when a statistic needs at least one
// non-Missing value.
var ErrNoValues = errors.New("column has no non-missing values")

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(op, format string, args ...any) error {
	return &ValidationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
