package middleware

import (
	"context"
	"net/http"

	"github.com/companeros-en-ruta/api/internal/auth"
	"github.com/companeros-en-ruta/api/internal/models"
	"github.com/companeros-en-ruta/api/pkg/respond"
	"github.com/rs/zerolog/log"
)

// SessionVerifier checks a session token locally
type SessionVerifier interface {
	Verify(token string) (*models.SessionClaims, error)
}

// RevocationChecker reports signed-out session tokens
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// EdgeSessionConfig configures EdgeSession
type EdgeSessionConfig struct {
	IdentityHeader string
	SessionCookie  string
	// TrustUpstream keeps an identity header already set by a proxy
	TrustUpstream bool
	Verifier      SessionVerifier
	Revocations   RevocationChecker
}

// EdgeSession plays the edge layer in front of the resolver. It removes any
// identity header the client sent, verifies the session token locally and,
// when valid, sets the identity header so the resolver can skip the provider
// round-trip. Tokens it cannot verify are left for the resolver's fallback.
// Revoked tokens are rejected outright.
func EdgeSession(cfg EdgeSessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.TrustUpstream && r.Header.Get(cfg.IdentityHeader) != "" {
				next.ServeHTTP(w, r)
				return
			}

			r = r.Clone(r.Context())
			r.Header.Del(cfg.IdentityHeader)

			token := auth.AccessToken(r, cfg.SessionCookie)
			if token == "" || cfg.Verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := cfg.Verifier.Verify(token)
			if err != nil {
				log.Debug().Err(err).Msg("Session token not verified locally")
				next.ServeHTTP(w, r)
				return
			}

			if cfg.Revocations != nil {
				revoked, err := cfg.Revocations.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					log.Error().Err(err).Msg("Failed to check session revocation")
					respond.Error(w, http.StatusUnauthorized, "Not authenticated")
					return
				}
				if revoked {
					respond.Error(w, http.StatusUnauthorized, "Session revoked")
					return
				}
			}

			r.Header.Set(cfg.IdentityHeader, claims.Subject)
			next.ServeHTTP(w, r.WithContext(auth.ContextWithSession(r.Context(), claims)))
		})
	}
}
