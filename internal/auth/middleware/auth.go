package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/japanesestudent/content-service/internal/models"
)

type contextKey string

const principalKey contextKey = "principal"

// TokenValidator validates an access token and resolves the principal
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (models.Principal, error)
}

// AuthMiddleware validates the JWT access token and stores the principal in the request context
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeUnauthorized(w, "authentication required")
				return
			}

			principal, err := validator.ValidateAccessToken(token)
			if err != nil {
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// extractToken reads the token from the Authorization header, falling back to the access_token cookie
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}

	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}

	return ""
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

// WithPrincipal stores the principal in the context
func WithPrincipal(ctx context.Context, principal models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// GetPrincipal retrieves the principal from context
func GetPrincipal(ctx context.Context) (models.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(models.Principal)
	return principal, ok
}
