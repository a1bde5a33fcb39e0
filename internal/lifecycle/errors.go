package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidID is returned for a non-numeric or non-positive id.
	ErrInvalidID = errors.New("invalid item id")
	// ErrNotFound is returned when the backend has no such item.
	ErrNotFound = errors.New("item not found")
	// ErrValidation is returned for input rejected before any backend call.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition is returned for an operation the current state does not allow.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// BackendError wraps a failure reported by the backend collaborator.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func transitionError(op, state string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, op, state)
}
