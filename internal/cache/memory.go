package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache implements Cache in process memory. Revocations do not survive
// restarts and are not shared between replicas.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]memoryItem
	now  func() time.Time
	done chan struct{}
	once sync.Once
}

type memoryItem struct {
	value      []byte
	expiration time.Time
}

// NewMemoryCache creates a new in-memory cache and starts its sweeper
func NewMemoryCache() *MemoryCache {
	mc := &MemoryCache{
		data: make(map[string]memoryItem),
		now:  time.Now,
		done: make(chan struct{}),
	}
	go mc.sweep(time.Minute)
	return mc
}

// Set stores a value until ttl elapses
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = memoryItem{
		value:      value,
		expiration: m.now().Add(ttl),
	}
	return nil
}

// Exists reports whether an unexpired key is present
func (m *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return m.now().Before(item.expiration), nil
}

// Len returns the number of stored keys, expired ones included until swept
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MemoryCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.removeExpired()
		case <-m.done:
			return
		}
	}
}

func (m *MemoryCache) removeExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, item := range m.data {
		if !now.Before(item.expiration) {
			delete(m.data, key)
		}
	}
}

// Close stops the sweeper
func (m *MemoryCache) Close() error {
	m.once.Do(func() { close(m.done) })
	return nil
}
