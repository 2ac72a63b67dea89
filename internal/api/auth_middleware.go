package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/invest-tracker/internal/auth"
	"github.com/invest-tracker/internal/types"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	userEmailKey contextKey = "userEmail"
)

// UserIDFromContext returns the authenticated user ID placed by AuthMiddleware
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// AuthMiddleware verifies the bearer token and stores the caller's identity
// in the request context. Requests without a valid session token get 401.
func AuthMiddleware(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respondError(w, http.StatusUnauthorized, types.CodeUnauthorized, "Missing authorization token", nil)
				return
			}

			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				respondError(w, http.StatusUnauthorized, types.CodeUnauthorized, "Malformed authorization header", nil)
				return
			}

			claims, err := tokens.VerifySession(tokenString)
			if err != nil {
				respondError(w, http.StatusUnauthorized, types.CodeUnauthorized, "Invalid or expired token", nil)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, userEmailKey, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
