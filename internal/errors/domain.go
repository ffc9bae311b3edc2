package errors

import "fmt"

// Domain error kinds returned by the service layer. Each carries the ids of
// the records involved so callers and logs can point at the offending rows.

// ValidationError reports invalid input (bad action, master outside the pair,
// ownership percentages over 100, identical merge ids).
type ValidationError struct {
	Message string
	SMEIDs  []uint
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s (smes=%v)", e.Message, e.SMEIDs)
}

func NewValidationError(message string, smeIDs ...uint) *ValidationError {
	return &ValidationError{Message: message, SMEIDs: smeIDs}
}

// InvalidStateError reports an operation against a record or candidate that
// is not in a state admitting the operation (e.g. resolving a terminal
// candidate).
type InvalidStateError struct {
	Message string
	State   string
	IDs     []uint
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state %q: %s (ids=%v)", e.State, e.Message, e.IDs)
}

func NewInvalidStateError(message, state string, ids ...uint) *InvalidStateError {
	return &InvalidStateError{Message: message, State: state, IDs: ids}
}

// AlreadyMergedError reports a merge attempt involving a record that has
// already been superseded by an earlier merge.
type AlreadyMergedError struct {
	SMEID        uint
	MergedIntoID uint
}

func (e *AlreadyMergedError) Error() string {
	return fmt.Sprintf("sme %d has already been merged into %d", e.SMEID, e.MergedIntoID)
}

func NewAlreadyMergedError(smeID, mergedIntoID uint) *AlreadyMergedError {
	return &AlreadyMergedError{SMEID: smeID, MergedIntoID: mergedIntoID}
}

// NotFoundError reports a missing record
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func NewNotFoundError(resource string, id uint) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// PersistenceError wraps a storage failure after which the whole operation
// was rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}
