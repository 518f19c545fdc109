package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

type contextKey string

// userIDKey is the context key for the authenticated user ID.
const userIDKey = contextKey("userID")

// UserIDFromContext returns the authenticated user ID attached by Middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// Middleware protects routes with bearer-token authentication. The header
// must be exactly "Authorization: Bearer <token>". On success the resolved
// user ID is attached to the request context; nothing else is touched. The
// response never distinguishes an expired token from an invalid one, only
// the log line does.
func (m *Manager) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "Not authenticated. Please provide a valid token.")
				return
			}

			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenStr == "" {
				unauthorized(w, "Not authenticated. Please provide a valid token.")
				return
			}

			userID, err := m.Verify(tokenStr)
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					log.Warn().Str("path", r.URL.Path).Msg("Rejected expired token")
				} else {
					log.Warn().Str("path", r.URL.Path).Msg("Rejected invalid token")
				}
				unauthorized(w, "Invalid or expired token. Please login again.")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// unauthorized writes a 401 in the uniform response envelope.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
