package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors. Services return these (possibly
// wrapped); handlers map them onto HTTP status codes.
var (
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized covers every authentication failure: bad password,
	// invalid/expired/forged token, session marker mismatch, failed
	// federated verification. Callers never learn which one it was.
	ErrUnauthorized = errors.New("unauthorized access")

	// ErrConflict signals a uniqueness violation (email or federated
	// subject already registered).
	ErrConflict = errors.New("conflict: resource already exists")

	// ErrStoreUnavailable means the refresh-session store could not be
	// reached. Operations that need it fail hard, never bypass it.
	ErrStoreUnavailable = errors.New("session store unavailable")

	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal server error")
)

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
