package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
// Validation errors are never retried; they surface immediately to the caller.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that a posting already exists for the same
// (reference_kind, reference_id) fingerprint. Not a failure: callers
// short-circuit to the existing journal entry.
var ErrDuplicate = errors.New("resource already exists")

// ErrTransient indicates a temporary failure (connectivity, lease
// contention) that is safe to retry with backoff.
var ErrTransient = errors.New("transient error")

// ErrIntegrity indicates a data inconsistency (orphaned entry, global
// balance violation) that requires human remediation.
var ErrIntegrity = errors.New("integrity error")

// ErrConflict indicates the operation conflicts with the current state of
// the resource (e.g. reversing an already reversed entry).
var ErrConflict = errors.New("resource conflict")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError wraps a lower-level error with a status code and a message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}
