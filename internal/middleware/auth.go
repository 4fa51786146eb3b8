package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/dkorolev/digital-home/backend/internal/auth"
)

type contextKey struct{ name string }

var userIDKey = &contextKey{"user_id"}

// UserID returns the authenticated user id injected by RequireAuth.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// RequireAuth validates the request's session token and injects the resolved
// user id into the context. Requests without a valid session are rejected
// before the protected handler runs.
func RequireAuth(sessions auth.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.TokenFromRequest(r)
			if token == "" {
				http.Error(w, `{"message":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}

			userID, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				// Session store failure, not a missing session; re-authenticating
				// would not help the caller.
				log.Printf("session resolve error: %v", err)
				http.Error(w, `{"message":"internal error"}`, http.StatusInternalServerError)
				return
			}
			if userID == "" {
				http.Error(w, `{"message":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
