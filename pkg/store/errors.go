package store

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when using a backend after Close.
	ErrClosed = errors.New("store is closed")

	// ErrCorruptSnapshot is returned when a persisted snapshot cannot be
	// decoded.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// Error wraps a backend failure with the operation that produced it.
type Error struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("store: %v", e.Err)
	}
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether the underlying error matches target.
func (e *Error) Is(target error) bool { return errors.Is(e.Err, target) }

func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
