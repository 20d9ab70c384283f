package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrVersionConflict is returned when a compare-and-set fails because
	// the stored version no longer matches the caller's. The caller lost
	// an optimistic-concurrency race; the stored row was not modified.
	ErrVersionConflict = errors.New("version conflict")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a transaction fails to commit
	// or an operation within it fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors.

	// ErrMemoryStateNotFound indicates the (learner, card) memory state
	// does not exist.
	ErrMemoryStateNotFound = fmt.Errorf("%w: memory state", ErrNotFound)

	// ErrParametersNotFound indicates no parameter vector is stored for
	// the learner.
	ErrParametersNotFound = fmt.Errorf("%w: parameters", ErrNotFound)
)

// IsNotFoundError checks whether the error is any kind of "not found"
// error, generic or entity-specific.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError carries entity and operation context alongside the wrapped
// cause, so logs can say what failed without leaking SQL details upward.
type StoreError struct {
	Entity    string // e.g. "review_event", "parameters"
	Operation string // e.g. "append", "compare_and_set"
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v",
			e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a StoreError.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
