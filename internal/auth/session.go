package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SessionCookie is the cookie carrying the session token.
	SessionCookie = "session_id"

	sessionTokenBytes = 32
	sessionKeyPrefix  = "session:"
)

// SessionStore binds opaque tokens to user ids with an expiry.
type SessionStore interface {
	// Create generates an unguessable token bound to userID.
	Create(ctx context.Context, userID string) (string, error)

	// Resolve returns the userID for a token, or "" if the token is
	// unknown, malformed, or expired.
	Resolve(ctx context.Context, token string) (string, error)

	// Destroy removes a session. Removing an absent token is not an error.
	Destroy(ctx context.Context, token string) error

	// TTL reports the configured session lifetime.
	TTL() time.Duration
}

// RedisSessions implements SessionStore on Redis. Expiry is enforced by the
// per-key TTL, so an expired token resolves exactly like one that never existed.
type RedisSessions struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessions(rdb *redis.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{rdb: rdb, ttl: ttl}
}

func (s *RedisSessions) Create(ctx context.Context, userID string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+token, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *RedisSessions) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", nil
	}
	val, err := s.rdb.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (s *RedisSessions) Destroy(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+token).Err()
}

func (s *RedisSessions) TTL() time.Duration {
	return s.ttl
}

// generateToken returns 32 bytes of crypto/rand, hex-encoded.
func generateToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// TokenFromRequest extracts the session token from the session cookie or,
// failing that, an Authorization: Bearer header. Returns "" if neither is set.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
