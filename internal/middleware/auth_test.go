package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkorolev/digital-home/backend/internal/auth"
	"github.com/dkorolev/digital-home/backend/internal/middleware"
)

type stubSessions struct {
	byToken    map[string]string
	resolveErr error
}

func (s *stubSessions) Create(_ context.Context, userID string) (string, error) {
	return "", nil
}

func (s *stubSessions) Resolve(_ context.Context, token string) (string, error) {
	if s.resolveErr != nil {
		return "", s.resolveErr
	}
	return s.byToken[token], nil
}

func (s *stubSessions) Destroy(_ context.Context, token string) error { return nil }
func (s *stubSessions) TTL() time.Duration                            { return time.Hour }

func guardedEcho(t *testing.T, sessions auth.SessionStore) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		require.True(t, ok, "guarded handler must see an identity")
		w.Write([]byte(userID))
	})
	return middleware.RequireAuth(sessions)(next)
}

func TestRequireAuth(t *testing.T) {
	sessions := &stubSessions{byToken: map[string]string{"good-token": "user-42"}}
	h := guardedEcho(t, sessions)

	t.Run("valid cookie forwards with identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "good-token"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-42", rec.Body.String())
	})

	t.Run("valid bearer token forwards", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Unauthorized")
	})

	t.Run("unknown token short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "expired-or-bogus"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("session store failure is a server error, not a 401", func(t *testing.T) {
		broken := guardedEcho(t, &stubSessions{resolveErr: errors.New("redis: connection refused")})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "good-token"})
		rec := httptest.NewRecorder()
		broken.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestUserIDAbsent(t *testing.T) {
	_, ok := middleware.UserID(context.Background())
	assert.False(t, ok)
}
