package cache

import (
	"context"
	"errors"
	"time"
)

// SessionRevoker records session tokens that were signed out before expiry
type SessionRevoker struct {
	store Cache
	now   func() time.Time
}

// NewSessionRevoker creates a revoker over the given store
func NewSessionRevoker(store Cache) *SessionRevoker {
	return &SessionRevoker{store: store, now: time.Now}
}

// Revoke marks a token id as revoked until the token would have expired
// anyway. Already expired tokens are ignored.
func (s *SessionRevoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return errors.New("cache: token id is required")
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.store.Set(ctx, SessionKey(tokenID), []byte("1"), ttl)
}

// IsRevoked reports whether a token id was revoked
func (s *SessionRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	return s.store.Exists(ctx, SessionKey(tokenID))
}
