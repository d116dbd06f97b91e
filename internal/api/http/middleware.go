package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/RAJVEER42/url-shortener/internal/auth"
	"github.com/RAJVEER42/url-shortener/pkg/response"
)

type contextKey string

const userIDKey contextKey = "userID"

const sessionCookieName = "token"

// extractToken pulls the session token from the Authorization header or,
// failing that, from the session cookie.
func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}

	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}

	return ""
}

// authenticate resolves the caller identity via the given authenticator and
// injects the user id into the request context. Any failure is reported
// uniformly as unauthenticated.
func authenticate(authn auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := authn.Authenticate(r.Context(), extractToken(r))
			if err != nil {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.UnauthorizedResponse)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
