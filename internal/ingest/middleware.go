package ingest

import (
	"context"
	"net/http"
	"strings"

	"github.com/ingestguard/ingestguard/internal/session"
)

type contextKey string

const principalContextKey contextKey = "principal"

// principalFromContext retrieves the authenticated principal set by
// SessionAuth. Returns "" if called outside an authenticated route.
func principalFromContext(ctx context.Context) string {
	principal, _ := ctx.Value(principalContextKey).(string)
	return principal
}

func extractSessionToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Session") {
		return "", false
	}
	return parts[1], true
}

// SessionAuth validates the "Authorization: Session <token>" header against
// registry, storing the resolved principal in the request context. Missing
// or invalid sessions get a generic 401 — no distinction from a bad
// passphrase is made anywhere in this pipeline.
func SessionAuth(registry *session.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractSessionToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			principal, ok := registry.Validate(token)
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
