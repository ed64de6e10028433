package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/justp2p/justp2p-backend/internal/models"
	"github.com/justp2p/justp2p-backend/internal/services"
)

type contextKey string

// userKey stores the resolved *models.User in the request context.
const userKey contextKey = "currentUser"

// Authenticator validates the bearer token and resolves the caller to a user
// document before the handler runs. Handlers never trust a client-supplied
// user id; the identity always comes from here.
func Authenticator(tokens *services.TokenService, users services.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r.Header.Get("Authorization"))
			if token == "" {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Parse(token)
			if err != nil {
				if errors.Is(err, services.ErrTokenExpired) {
					http.Error(w, "Token expired", http.StatusUnauthorized)
				} else {
					http.Error(w, "Invalid token", http.StatusUnauthorized)
				}
				return
			}

			user, err := users.FindByID(r.Context(), claims.UserID)
			if err != nil {
				http.Error(w, "User not found", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser extracts the authenticated user placed in the context by
// Authenticator. The second return is false outside authenticated routes.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// WithUser returns a context carrying the given user. Intended for handler tests.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// extractBearerToken pulls the token out of an "Authorization: Bearer x" header.
func extractBearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
