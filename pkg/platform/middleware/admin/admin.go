// Package admin guards operator endpoints with a shared static token.
package admin

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"deletionguard/pkg/requestcontext"
)

type contextKeyAdminActorID struct{}

// ActorID returns the operator identifier supplied via X-Admin-Actor-ID, or
// "admin" when the caller did not name themselves.
func ActorID(ctx context.Context) string {
	if actorID, ok := ctx.Value(contextKeyAdminActorID{}).(string); ok && actorID != "" {
		return actorID
	}
	return "admin"
}

// RequireAdminToken rejects requests whose X-Admin-Token does not match.
// An empty expected token disables every admin route.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := r.Header.Get("X-Admin-Token")
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin token required"}`))
				return
			}

			if actorID := r.Header.Get("X-Admin-Actor-ID"); actorID != "" {
				ctx = context.WithValue(ctx, contextKeyAdminActorID{}, actorID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
