package cache

import (
	"context"
	"errors"
	"time"
)

// Cache is the key/value store behind session revocation. Only marker keys
// with a TTL are stored; authorization results never are.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// ErrInvalidTTL is returned when a non-positive TTL is supplied
var ErrInvalidTTL = errors.New("cache: ttl must be positive")

const sessionKeyPrefix = "session:revoked:"

// SessionKey builds the key that marks a session token as revoked
func SessionKey(tokenID string) string {
	return sessionKeyPrefix + tokenID
}
