package http

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/http/handlers"
	"github.com/mauv0809/courtside/internal/identity"
)

// Headers set by the gateway after authenticating the caller.
const (
	playerIDHeader    = "X-Player-ID"
	permissionsHeader = "X-Permissions"
)

// paramsMiddleware handles common query parameters like 'verbose' and 'dry_run'.
func paramsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Info("incoming request", "method", r.Method, "url", r.URL.String())
		// Handle 'verbose' for request-scoped verbose logging.
		if r.URL.Query().Get("verbose") == "true" {
			originalLevel := log.GetLevel()
			log.SetLevel(log.DebugLevel)
			defer log.SetLevel(originalLevel)
		}

		// Handle 'dry_run' and add it to the request context.
		isDryRun := r.URL.Query().Get("dry_run") == "true"
		ctx := context.WithValue(r.Context(), handlers.DryRunKey, isDryRun)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// actorMiddleware turns the gateway identity headers into an identity.Actor.
// Requests without them are anonymous.
func actorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := identity.Actor{
			PlayerID:    r.Header.Get(playerIDHeader),
			Permissions: identity.ParsePermissions(r.Header.Get(permissionsHeader)),
		}
		if actor.PlayerID != "" {
			log.Debug("Authenticated request", "playerID", actor.PlayerID, "admin", actor.IsAdmin())
		}
		ctx := context.WithValue(r.Context(), handlers.ActorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
