package auth

import (
	"errors"
	"strings"
)

var (
	// ErrUsernameTaken is returned when registering a username that already exists.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidCredentials is returned for both unknown-username and
	// wrong-password logins so the two cases cannot be told apart.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNotAuthenticated is returned when a session token is missing,
	// unknown, or expired.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrUserNotFound is returned by the user store for missing records.
	ErrUserNotFound = errors.New("user not found")
)

// ValidationError reports every input constraint a request violated.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "; ")
}
