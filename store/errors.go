package store

import (
	"errors"
	"fmt"

	"github.com/Skryldev/todo-api/db"
)

// ─────────────────────────────────────────────────────────────────────────────
// Domain errors
// ─────────────────────────────────────────────────────────────────────────────

var (
	// ErrNotFound is returned for a todo or user that does not exist. For
	// todos it also covers "exists but belongs to someone else".
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicateEmail is returned when registering an email already in use.
	ErrDuplicateEmail = errors.New("store: email already registered")

	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("store: invalid email or password")

	// ErrInvalidInput is matched by every *ValidationError.
	ErrInvalidInput = errors.New("store: invalid input")

	// ErrStorage is matched by every *StorageError.
	ErrStorage = errors.New("store: storage failure")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string        { return e.Field + ": " + e.Reason }
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// StorageError wraps an unexpected database failure. Its cause is meant for
// logs; callers should only test it with errors.Is(err, ErrStorage).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string        { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *StorageError) Is(target error) bool { return target == ErrStorage }
func (e *StorageError) Unwrap() error        { return e.Err }

// mapErr converts what comes out of a transaction into a domain error.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidInput):
		return err
	case db.IsNotFound(err):
		return ErrNotFound
	default:
		return &StorageError{Op: op, Err: err}
	}
}
