package services

import "errors"

// Sentinel error kinds returned by the service layer. Controllers translate
// them into numbered API codes with errors.Is; services wrap them with
// fmt.Errorf("%w: ...") to add context.
var (
	// ErrUnauthorized means the operation is outside the caller's scope.
	// It is never partially applied.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound covers both "does not exist" and "exists but outside the
	// caller's visible scope", so existence never leaks across tenants.
	ErrNotFound = errors.New("not found")

	// ErrInvalidAssignment flags cross-company device assignments and
	// unknown access levels.
	ErrInvalidAssignment = errors.New("invalid assignment")

	// ErrConflict flags uniqueness violations on create or update.
	ErrConflict = errors.New("conflict")

	// ErrValidation flags missing or malformed required fields.
	ErrValidation = errors.New("validation failed")
)
