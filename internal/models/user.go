package models

import "time"

// User represents a row in the PostgreSQL users table.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never serialize
	CreatedAt    time.Time `json:"created_at"`
}

// AuthResult is the public projection of a User returned to callers.
// It must never carry the password hash.
type AuthResult struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Public converts a User into its safe external representation.
func (u *User) Public() AuthResult {
	return AuthResult{ID: u.ID, Username: u.Username}
}

// RegisterRequest is the JSON body for POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
