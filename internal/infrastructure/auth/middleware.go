package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/harxxhilgg/univent/internal/infrastructure/redis"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	emailKey  contextKey = "email"
)

// UserID returns the authenticated user id stored by Middleware.
func UserID(ctx context.Context) (int32, bool) {
	id, ok := ctx.Value(userIDKey).(int32)
	return id, ok
}

// Email returns the authenticated email stored by Middleware.
func Email(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok
}

// Middleware authenticates bearer tokens and rejects tokens that have
// been revoked out from under the client (the issued token is cached in
// Redis keyed by user; logout and re-login replace it).
func Middleware(redisClient redis.Client, issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "authorization header missing", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}

			tokenStr := parts[1]
			claims, err := issuer.Validate(tokenStr)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			userID, ok := claims["userId"].(float64)
			if !ok {
				http.Error(w, "invalid userId in token", http.StatusUnauthorized)
				return
			}
			email, _ := claims["email"].(string)

			redisKey := fmt.Sprintf("user:%d:token", int32(userID))
			storedToken, err := redisClient.Get(r.Context(), redisKey)
			if err != nil || storedToken != tokenStr {
				slog.Warn("revoked or unknown token", "user_id", int32(userID), "error", err)
				http.Error(w, "invalid or revoked token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, int32(userID))
			ctx = context.WithValue(ctx, emailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
