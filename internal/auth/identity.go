package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrNoUser is returned by a Provider when the session does not belong to
// any user
var ErrNoUser = errors.New("auth: no user for session")

// ProviderUser is the user record returned by the auth provider
type ProviderUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email,omitempty"`
	Role  string    `json:"role,omitempty"`
}

// Provider verifies a session token with the auth provider
type Provider interface {
	GetUser(ctx context.Context, accessToken string) (*ProviderUser, error)
}

// Source tells which path produced an identity
type Source string

const (
	SourceHeader   Source = "header"
	SourceProvider Source = "provider"
)

// Identity is the caller's auth provider user id
type Identity struct {
	UserID uuid.UUID
	Email  string
	Source Source
}

// Identify resolves the caller. A trusted header wins; without one the
// session token is verified with the provider. Every failure, including a
// malformed header or a provider outage, is reported as unauthenticated.
func (r *Resolver) Identify(ctx context.Context, creds Credentials) (Identity, error) {
	if raw := strings.TrimSpace(creds.TrustedUserID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			log.Warn().Str("header_value", raw).Msg("Malformed identity header")
			return Identity{}, newError(KindUnauthenticated, "Not authenticated", err)
		}
		return Identity{UserID: id, Source: SourceHeader}, nil
	}

	if creds.AccessToken == "" || r.provider == nil {
		return Identity{}, newError(KindUnauthenticated, "Not authenticated", nil)
	}

	user, err := r.provider.GetUser(ctx, creds.AccessToken)
	if err != nil {
		if !errors.Is(err, ErrNoUser) {
			log.Warn().Err(err).Msg("Auth provider session check failed")
		}
		return Identity{}, newError(KindUnauthenticated, "Not authenticated", err)
	}
	if user == nil || user.ID == uuid.Nil {
		return Identity{}, newError(KindUnauthenticated, "Not authenticated", nil)
	}

	return Identity{UserID: user.ID, Email: user.Email, Source: SourceProvider}, nil
}
