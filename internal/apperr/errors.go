// Package apperr holds the error kinds shared by the store, the services and
// the HTTP layer. Callers match them with errors.Is.
package apperr

import (
	"github.com/pkg/errors"
)

var (
	ErrAlreadyRegistered   = errors.New("attendance already registered for this date")
	ErrNotFound            = errors.New("not found")
	ErrHasDependents       = errors.New("record has dependents and cannot be deleted")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrInvalidState        = errors.New("invalid state transition")
	ErrValidation          = errors.New("validation failed")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInactive            = errors.New("account is inactive")
	ErrForbidden           = errors.New("access denied")
	ErrUnauthenticated     = errors.New("authentication required")
)

// StorageError wraps a driver or connection failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + ErrStorageUnavailable.Error() + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// Storage returns err wrapped as a StorageError, or nil when err is nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// Validation returns an ErrValidation carrying msg.
func Validation(msg string) error {
	return errors.Wrap(ErrValidation, msg)
}

// Validationf is the formatted form of Validation.
func Validationf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrValidation, format, args...)
}
