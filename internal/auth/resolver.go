package auth

import (
	"context"
	"errors"

	"github.com/companeros-en-ruta/api/internal/models"
	"github.com/companeros-en-ruta/api/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ProfileStore loads a user's active profile with its active role
// assignments in one read. It returns repository.ErrProfileNotFound when
// there is none.
type ProfileStore interface {
	FindActiveProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
}

// Resolver runs identity resolution, profile loading and role gating for
// a single request. It holds no per-request state and caches nothing.
type Resolver struct {
	provider Provider
	profiles ProfileStore
}

// NewResolver creates a resolver. provider may be nil, in which case only
// requests carrying a trusted identity header can authenticate.
func NewResolver(provider Provider, profiles ProfileStore) *Resolver {
	return &Resolver{provider: provider, profiles: profiles}
}

// Resolve authorizes the caller described by creds against policy
func (r *Resolver) Resolve(ctx context.Context, creds Credentials, policy Policy) (*Context, error) {
	ac, err := r.resolve(ctx, creds, policy)
	observe(policy.Role, err)
	return ac, err
}

func (r *Resolver) resolve(ctx context.Context, creds Credentials, policy Policy) (*Context, error) {
	identity, err := r.Identify(ctx, creds)
	if err != nil {
		return nil, err
	}

	profile, err := r.profiles.FindActiveProfile(ctx, identity.UserID)
	switch {
	case errors.Is(err, repository.ErrProfileNotFound):
		log.Warn().Str("user_id", identity.UserID.String()).Msg("No active profile for authenticated user")
		return nil, newError(KindProfileNotFound, "User profile not found", err)
	case err != nil:
		log.Error().Err(err).Str("user_id", identity.UserID.String()).Msg("Failed to load user profile")
		return nil, newError(KindUnavailable, "Authorization service unavailable", err)
	case profile == nil:
		return nil, newError(KindProfileNotFound, "User profile not found", nil)
	}

	ac, err := Gate(profile, policy, creds.TenantID)
	if err != nil {
		log.Warn().
			Str("user_id", identity.UserID.String()).
			Str("profile_id", profile.ID.String()).
			Str("required_role", string(policy.Role)).
			Msg("Role requirement not met")
		return nil, err
	}

	ac.AuthUserID = identity.UserID
	log.Debug().
		Str("profile_id", ac.UserProfileID.String()).
		Str("tenant_id", ac.TenantID.String()).
		Str("role", string(ac.Role.Role)).
		Str("identity_source", string(identity.Source)).
		Msg("Request authorized")
	return ac, nil
}

func (r *Resolver) ResolveAdmin(ctx context.Context, creds Credentials) (*Context, error) {
	return r.Resolve(ctx, creds, AdminPolicy)
}

func (r *Resolver) ResolveBrand(ctx context.Context, creds Credentials) (*Context, error) {
	return r.Resolve(ctx, creds, BrandPolicy)
}

func (r *Resolver) ResolvePromotor(ctx context.Context, creds Credentials) (*Context, error) {
	return r.Resolve(ctx, creds, PromotorPolicy)
}

func (r *Resolver) ResolveAsesor(ctx context.Context, creds Credentials) (*Context, error) {
	return r.Resolve(ctx, creds, AsesorPolicy)
}

func (r *Resolver) ResolveSupervisor(ctx context.Context, creds Credentials) (*Context, error) {
	return r.Resolve(ctx, creds, SupervisorPolicy)
}

func (r *Resolver) ResolveClient(ctx context.Context, creds Credentials) (*Context, error) {
	return r.Resolve(ctx, creds, ClientPolicy)
}
