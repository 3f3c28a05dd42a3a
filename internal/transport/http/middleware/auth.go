package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mwalczyk/chirp/internal/domain"
	"github.com/mwalczyk/chirp/internal/identity"
)

type contextKey string

const SessionKey contextKey = "session"

// Auth validates the bearer token and attaches the resulting session to the
// request context.
func Auth(ident *identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, `{"error":{"code":"UNAUTHORIZED","message":"Missing or invalid token"}}`, http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(header, "Bearer ")

			userID, err := ident.VerifyToken(tokenStr)
			if err != nil {
				http.Error(w, `{"error":{"code":"UNAUTHORIZED","message":"Invalid or expired token"}}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, domain.Session{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession extracts the session from the request context.
func GetSession(ctx context.Context) domain.Session {
	sess, _ := ctx.Value(SessionKey).(domain.Session)
	return sess
}
