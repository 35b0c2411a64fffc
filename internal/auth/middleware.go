package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/DriveLinkHQ/dl-backend/internal/authz"
	"github.com/google/uuid"
)

type contextKey string

const (
	userKey  contextKey = "authenticated_user"
	tokenKey contextKey = "bearer_token"
)

// AuthenticatedUser is the caller's identity plus the permission set their
// session carries, as placed in the request context by Middleware.
type AuthenticatedUser struct {
	ID          uuid.UUID
	Permissions authz.PermissionSet
}

type Authenticator struct {
	jwtService *JWTService
}

func NewAuthenticator(jwtService *JWTService) *Authenticator {
	return &Authenticator{jwtService: jwtService}
}

// Middleware validates a bearer token when one is present and stores the
// authenticated user in the context. Requests without an Authorization
// header pass through unauthenticated: permission resolution has a
// defined view-only answer for them. A header that is present but invalid
// is rejected.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authHeader, bearerPrefix)
		claims, err := a.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, &AuthenticatedUser{
			ID:          claims.UserID,
			Permissions: claims.Permissions,
		})
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth wraps a handler that must not run unauthenticated.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetAuthenticatedUser(r.Context()); !ok {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ContextWithUser returns a context carrying the given user, as the
// middleware would have produced. Useful for exercising handlers
// directly.
func ContextWithUser(ctx context.Context, user *AuthenticatedUser) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func GetAuthenticatedUser(ctx context.Context) (*AuthenticatedUser, bool) {
	user, ok := ctx.Value(userKey).(*AuthenticatedUser)
	return user, ok
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	if user, ok := GetAuthenticatedUser(ctx); ok {
		return user.ID, true
	}
	return uuid.Nil, false
}

// GetBearerToken returns the raw token the caller presented, for
// pass-through to the core API.
func GetBearerToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}
