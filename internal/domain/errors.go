package domain

import "errors"

// Sentinel errors shared across services and repositories. Services wrap them
// with fmt.Errorf("%w: ...") to add detail; the delivery layer maps them onto
// HTTP statuses with errors.Is.
var (
	// ErrNotFound means the requested object does not exist, or is not
	// visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrConflict means the operation violates a state or uniqueness rule.
	ErrConflict = errors.New("conflict")
	// ErrValidation means the input is malformed or out of range.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden means the caller is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")
)
