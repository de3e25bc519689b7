package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/MaheshMoholkar/ignite-lms/internal/auth"
	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/repository"
)

const AccessTokenCookie = "access_token"

// UserResolver hydrates a user record for an authenticated request,
// typically through the session cache.
type UserResolver interface {
	Resolve(ctx context.Context, userID string) (*entity.User, error)
}

// Authenticate reads the access token cookie, verifies it and loads the user
// into the request context. It never looks at the refresh token; an expired
// access token is a 401 and the client is expected to call the refresh
// endpoint.
func Authenticate(tokens *auth.TokenManager, resolver UserResolver, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AccessTokenCookie)
			if err != nil || cookie.Value == "" {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.ParseAccessToken(cookie.Value)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			user, err := resolver.Resolve(r.Context(), claims.UserID)
			if err != nil {
				// A valid token for an account that no longer exists is a
				// 404, not a credential problem.
				if errors.Is(err, repository.ErrNotFound) {
					http.Error(w, "user not found", http.StatusNotFound)
					return
				}
				log.Warnf("failed to resolve user %s: %v", claims.UserID, err)
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

// RequireRoles rejects authenticated requests whose user holds none of the
// listed roles.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			if !allowed[user.Role] {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
