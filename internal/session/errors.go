package session

import (
	"errors"
	"fmt"
)

// Store errors.
var (
	// ErrNotInitialized indicates no .memoria directory exists at the store root.
	ErrNotInitialized = errors.New("memoria not initialized")

	// ErrConfig indicates the config file is missing or unreadable.
	ErrConfig = errors.New("failed to load config")

	// ErrSessionNotFound indicates the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidID indicates a session id that cannot name a file in the store.
	ErrInvalidID = errors.New("invalid session id")
)

// NotFoundError wraps ErrSessionNotFound with the requested id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Session not found: %s", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrSessionNotFound
}

// IsNotFound reports whether err is a session-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func isInvalidID(err error) bool {
	return errors.Is(err, ErrInvalidID)
}
