package helper

import (
	"fmt"
)

// Error wraps an error with the operation that failed
type Error struct {
	Operation string
	Err       error
}

// NewError wraps err with the failed operation.
// It returns nil if err is nil.
func NewError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Operation: operation, Err: err}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("error in %s: %v", e.Operation, e.Err)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}
