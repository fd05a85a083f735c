package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pratik-mahalle/lessonplanner/internal/auth"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/utils"
)

// ContextKey is a custom type for context keys
type ContextKey string

const (
	// UserIDKey is the context key for user ID
	UserIDKey ContextKey = "userID"
	// UserEmailKey is the context key for user email
	UserEmailKey ContextKey = "email"
	// IdentityKey is the context key for the resolved identity
	IdentityKey ContextKey = "identity"
)

// AccessTokenCookie carries the access token for browser clients
const AccessTokenCookie = "accessToken"

// tokenFromRequest prefers a Bearer header and falls back to the access token cookie
func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func withClaims(w http.ResponseWriter, r *http.Request, claims *auth.Claims) *http.Request {
	ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, UserEmailKey, claims.Email)

	AddLogField(w, "user_id", claims.UserID)
	AddLogField(w, "email", claims.Email)

	return r.WithContext(ctx)
}

// AuthMiddleware returns a middleware that requires a valid access token
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				utils.WriteError(w, errors.Unauthorized("Missing authentication token"))
				return
			}

			claims, err := auth.ParseTyped(tokenStr, jwtSecret, auth.TokenTypeAccess)
			if err != nil {
				utils.WriteError(w, errors.Unauthorized("Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, withClaims(w, r, claims))
		})
	}
}

// OptionalAuthMiddleware is like AuthMiddleware but lets anonymous requests through
func OptionalAuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenStr := tokenFromRequest(r); tokenStr != "" {
				if claims, err := auth.ParseTyped(tokenStr, jwtSecret, auth.TokenTypeAccess); err == nil {
					r = withClaims(w, r, claims)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin resolves the caller through resolver and rejects non-admins.
// It must run after AuthMiddleware.
func RequireAdmin(resolver user.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := GetUserEmail(r)
			if !ok || email == "" {
				utils.WriteError(w, errors.Unauthorized("User not authenticated"))
				return
			}

			id, err := resolver.Resolve(r.Context(), email)
			if err != nil {
				utils.WriteErr(w, err, "Failed to resolve identity")
				return
			}
			if !id.IsAdmin() {
				utils.WriteError(w, errors.Forbidden("Admin role required"))
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the user ID from the request context
func GetUserID(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// GetUserEmail extracts the user email from the request context
func GetUserEmail(r *http.Request) (string, bool) {
	email, ok := r.Context().Value(UserEmailKey).(string)
	return email, ok
}

// GetIdentity returns the identity stored by RequireAdmin
func GetIdentity(r *http.Request) (*user.Identity, bool) {
	id, ok := r.Context().Value(IdentityKey).(*user.Identity)
	return id, ok
}
