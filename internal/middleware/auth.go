package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

type contextKey string

const (
	// ClientKey holds the authenticated client name in the request context.
	ClientKey contextKey = "client"
)

// APIKeyAuth validates an API key from the Authorization header. Keys map a
// client name to its key; an empty map means auth is disabled and the
// middleware should not be installed at all.
func APIKeyAuth(validKeys map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Health stays reachable for probes
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			// Support both "Bearer <key>" and "<key>" formats
			apiKey := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if apiKey == "" {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			// Constant-time comparison to prevent timing attacks
			var client string
			for name, key := range validKeys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
					client = name
					break
				}
			}
			if client == "" {
				http.Error(w, "invalid API key", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClientKey, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientFromContext extracts the authenticated client name.
func GetClientFromContext(ctx context.Context) string {
	if client, ok := ctx.Value(ClientKey).(string); ok {
		return client
	}
	return ""
}
