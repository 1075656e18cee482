package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/testifyhq/testify/auth"
	"github.com/testifyhq/testify/models"
)

type contextKey string

// UserContextKey is the key used to store user claims in request context
const UserContextKey contextKey = "user"

// APIKeyContextKey is the key used to store the verified API key in request context
const APIKeyContextKey contextKey = "api_key"

// APIKeyHeader is the request header carrying a raw API key
const APIKeyHeader = "X-API-Key"

// KeyVerifier verifies a raw API key and returns its stored record
type KeyVerifier interface {
	Verify(rawSecret string) (*models.APIKey, error)
}

// AuthMiddleware handles JWT and API key authentication
type AuthMiddleware struct {
	jwtService *auth.JWTService
	keys       KeyVerifier
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(jwtService *auth.JWTService, keys KeyVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService, keys: keys}
}

// RequireAuth is a middleware that requires a valid JWT token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondUnauthorized(w, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			respondUnauthorized(w, "invalid authorization format")
			return
		}

		tokenString := parts[1]
		if tokenString == "" {
			respondUnauthorized(w, "missing token")
			return
		}

		claims, err := m.jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			respondUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole is a middleware that requires the authenticated user to hold
// at least the given role. Admins pass every check; moderators pass checks
// for moderator and user. Must be mounted after RequireAuth.
func (m *AuthMiddleware) RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserFromContext(r.Context())
			if !ok {
				respondUnauthorized(w, "authentication required")
				return
			}

			if !roleAllows(models.Role(claims.Role), role) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "insufficient permissions",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func roleAllows(have, want models.Role) bool {
	switch have {
	case models.RoleAdmin:
		return true
	case models.RoleModerator:
		return want == models.RoleModerator || want == models.RoleUser
	case models.RoleUser:
		return want == models.RoleUser
	}
	return false
}

// RequireAPIKey is a middleware that authenticates requests by the
// X-API-Key header. The verified key record is stored in the request
// context so handlers can scope reads and writes to its owner.
func (m *AuthMiddleware) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawSecret := r.Header.Get(APIKeyHeader)
		if rawSecret == "" {
			respondUnauthorized(w, "missing api key")
			return
		}

		key, err := m.keys.Verify(rawSecret)
		if err != nil {
			respondUnauthorized(w, "invalid api key")
			return
		}

		ctx := context.WithValue(r.Context(), APIKeyContextKey, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext retrieves user claims from request context
func GetUserFromContext(ctx context.Context) (*auth.AccessTokenClaims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*auth.AccessTokenClaims)
	return claims, ok
}

// GetAPIKeyFromContext retrieves the verified API key from request context
func GetAPIKeyFromContext(ctx context.Context) (*models.APIKey, bool) {
	key, ok := ctx.Value(APIKeyContextKey).(*models.APIKey)
	return key, ok
}

// respondUnauthorized sends a 401 response with error message
func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
