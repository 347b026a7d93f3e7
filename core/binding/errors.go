package binding

import "errors"

var (
	// ErrNotFound is returned when no binding exists for a session key.
	ErrNotFound = errors.New("session binding not found")
	// ErrEmptySessionKey is returned when a caller passes an empty session key.
	ErrEmptySessionKey = errors.New("session key is required")
	// ErrMissingUser is returned when an authenticated bind is attempted without a user.
	ErrMissingUser = errors.New("user id is required for authenticated binding")
)
