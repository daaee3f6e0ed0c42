package tracker

import (
	"errors"
	"fmt"
)

// RecoveryHint is attached to every StateError.
const RecoveryHint = "select the repository again"

var (
	// ErrEmptyTarget is returned when the target reference is blank.
	ErrEmptyTarget = errors.New("target reference must not be empty")
	// ErrInvalidPace is returned for a non-positive or non-finite ideal pace.
	ErrInvalidPace = errors.New("ideal pace must be a positive number")
	// ErrUnknownRepository is returned by Find when nothing matches.
	ErrUnknownRepository = errors.New("repository is not registered")
	// ErrEmptyHistory is returned when a step is requested on a branch
	// without commits.
	ErrEmptyHistory = errors.New("branch has no commits")
)

// FieldError reports a rejected settings field. Nothing is persisted when
// it is returned.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// StateError reports a failure that ended the current cycle. The working
// tree may not match the recorded position until the repository is synced
// again.
type StateError struct {
	Err  error
	Hint string
}

func (e *StateError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (%s)", e.Err, e.Hint)
}

func (e *StateError) Unwrap() error { return e.Err }

func stateError(op string, err error) error {
	return &StateError{Err: fmt.Errorf("%s: %w", op, err), Hint: RecoveryHint}
}
