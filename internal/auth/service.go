package auth

import (
	"context"
	"fmt"
	"regexp"

	"github.com/dkorolev/digital-home/backend/internal/models"
)

// Input constraints enforced on registration.
const (
	usernameMinLen = 3
	usernameMaxLen = 50
	passwordMinLen = 6
	passwordMaxLen = 128
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// dummyHash is verified against when a login names an unknown user, so the
// unknown-username path costs the same as a wrong-password path. It is a
// syntactically valid argon2id hash that matches no password.
const dummyHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// UserStore persists user records keyed by username.
type UserStore interface {
	// CreateUser inserts a new user. The uniqueness check and insert are
	// atomic; a duplicate username fails with ErrUsernameTaken.
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)

	// GetUserByUsername does an exact, case-sensitive lookup.
	// Missing records fail with ErrUserNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Service orchestrates registration, login, logout, and identity resolution.
type Service struct {
	users    UserStore
	sessions SessionStore
	hasher   PasswordHasher
}

func NewService(users UserStore, sessions SessionStore, hasher PasswordHasher) *Service {
	return &Service{users: users, sessions: sessions, hasher: hasher}
}

func validateRegistration(username, password string) error {
	var v ValidationError
	if len(username) < usernameMinLen {
		v.Violations = append(v.Violations,
			fmt.Sprintf("username must be at least %d characters", usernameMinLen))
	}
	if len(username) > usernameMaxLen {
		v.Violations = append(v.Violations,
			fmt.Sprintf("username must be at most %d characters", usernameMaxLen))
	}
	if username != "" && !usernamePattern.MatchString(username) {
		v.Violations = append(v.Violations,
			"username may only contain letters, digits, '.', '_' and '-'")
	}
	if len(password) < passwordMinLen {
		v.Violations = append(v.Violations,
			fmt.Sprintf("password must be at least %d characters", passwordMinLen))
	}
	if len(password) > passwordMaxLen {
		v.Violations = append(v.Violations,
			fmt.Sprintf("password must be at most %d characters", passwordMaxLen))
	}
	if len(v.Violations) > 0 {
		return &v
	}
	return nil
}

// Register validates the credentials, creates the user, and logs them in.
// The session is created explicitly here rather than as a persistence side
// effect, so the caller always receives the user and token as one result.
func (s *Service) Register(ctx context.Context, username, password string) (models.AuthResult, string, error) {
	if err := validateRegistration(username, password); err != nil {
		return models.AuthResult{}, "", err
	}

	// Fast path; the users table UNIQUE constraint is what actually closes
	// the check-then-insert race.
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return models.AuthResult{}, "", ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.AuthResult{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		return models.AuthResult{}, "", err
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return models.AuthResult{}, "", fmt.Errorf("create session: %w", err)
	}
	return user.Public(), token, nil
}

// Login verifies the credentials and creates a session. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (models.AuthResult, string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)

	target := dummyHash
	if err == nil {
		target = user.PasswordHash
	}

	// Verify unconditionally to keep the two failure paths the same cost.
	ok := s.hasher.Verify(password, target)
	if err != nil || !ok {
		return models.AuthResult{}, "", ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return models.AuthResult{}, "", fmt.Errorf("create session: %w", err)
	}
	return user.Public(), token, nil
}

// Logout destroys the session. Destroying an absent or already-destroyed
// session is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Destroy(ctx, token)
}

// CurrentIdentity resolves a session token to the user it belongs to.
func (s *Service) CurrentIdentity(ctx context.Context, token string) (models.AuthResult, error) {
	if token == "" {
		return models.AuthResult{}, ErrNotAuthenticated
	}
	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("resolve session: %w", err)
	}
	if userID == "" {
		return models.AuthResult{}, ErrNotAuthenticated
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return models.AuthResult{}, ErrNotAuthenticated
	}
	return user.Public(), nil
}
