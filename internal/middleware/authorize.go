package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/companeros-en-ruta/api/internal/auth"
	"github.com/companeros-en-ruta/api/pkg/respond"
	"github.com/rs/zerolog/log"
)

// ResolveFunc is one of the per-role resolvers, e.g. (*auth.Resolver).ResolveAdmin
type ResolveFunc func(ctx context.Context, creds auth.Credentials) (*auth.Context, error)

// RequireRole runs resolve before the route. Failures are answered
// immediately with the mapped status and the route handler is never called.
func RequireRole(resolve ResolveFunc, opts auth.CredentialOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds := auth.CredentialsFromRequest(r, opts)

			ac, err := resolve(r.Context(), creds)
			if err != nil {
				WriteAuthError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithContext(r.Context(), ac)))
		})
	}
}

// WriteAuthError writes a resolver failure as {"error": ...}
func WriteAuthError(w http.ResponseWriter, err error) {
	var authErr *auth.Error
	if !errors.As(err, &authErr) {
		log.Error().Err(err).Msg("Unexpected authorization error")
		respond.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if authErr.Kind == auth.KindUnauthenticated {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	respond.Error(w, authErr.Status(), authErr.Message)
}
