package services

import (
	"errors"
	"fmt"

	"photo-social-backend/internal/auth"
	"photo-social-backend/internal/repository"
)

var (
	// ErrNotFound indicates a referenced entity does not exist where it is required
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a write would violate a uniqueness rule
	ErrConflict = errors.New("conflict")

	// ErrPermissionDenied indicates the acting user may not perform the action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnprocessable indicates the target of a permission check, or the
	// acting user, does not exist
	ErrUnprocessable = errors.New("unprocessable entity")

	// ErrInvalidCredentials indicates an unknown email or a wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indicates a bearer token failed verification
	ErrInvalidToken = auth.ErrInvalidToken

	// ErrStorage is the catch-all for persistence failures
	ErrStorage = errors.New("storage failure")
)

// StorageError hides the underlying driver error from callers. It unwraps
// to ErrStorage only; the cause is kept for logging through Error.
type StorageError struct {
	Op    string
	cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrStorage, e.cause)
}

func (e *StorageError) Unwrap() error {
	return ErrStorage
}

func storageError(op string, err error) error {
	return &StorageError{Op: op, cause: err}
}

// translate maps repository errors onto the service error kinds.
// Errors that already carry a service kind pass through untouched.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isServiceError(err):
		return err
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrForeignKey):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	default:
		return storageError(op, err)
	}
}

func isServiceError(err error) bool {
	for _, kind := range []error{
		ErrNotFound, ErrConflict, ErrPermissionDenied, ErrUnprocessable,
		ErrInvalidCredentials, ErrInvalidToken, ErrStorage,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
