package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/companeros-en-ruta/api/pkg/respond"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures RateLimit. A non-positive PerSecond disables it.
type RateLimitConfig struct {
	PerSecond float64
	Burst     int
	// TrustedProxies keys buckets on the address RealIP derived from
	// forwarding headers. Otherwise the TCP peer recorded by PeerAddr is used.
	TrustedProxies bool
}

type peerAddrKey struct{}

// PeerAddr records the connection's remote address before RealIP rewrites
// it from client supplied headers. It must run ahead of RealIP.
func PeerAddr(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), peerAddrKey{}, r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// bucketTTL is how long an idle client keeps its bucket
const bucketTTL = 5 * time.Minute

// RateLimit applies a token bucket per client IP. It must run before the
// role gates.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg.PerSecond <= 0 {
			return next
		}
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}

		var (
			mu        sync.Mutex
			buckets   = make(map[string]*bucket)
			lastSweep = time.Now()
		)

		allow := func(key string) bool {
			mu.Lock()
			defer mu.Unlock()

			now := time.Now()
			if now.Sub(lastSweep) > time.Minute {
				for k, b := range buckets {
					if now.Sub(b.seen) > bucketTTL {
						delete(buckets, k)
					}
				}
				lastSweep = now
			}

			b, ok := buckets[key]
			if !ok {
				b = &bucket{lim: rate.NewLimiter(rate.Limit(cfg.PerSecond), burst)}
				buckets[key] = b
			}
			b.seen = now
			return b.lim.Allow()
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr := r.RemoteAddr
			if !cfg.TrustedProxies {
				if peer, ok := r.Context().Value(peerAddrKey{}).(string); ok && peer != "" {
					addr = peer
				}
			}
			if !allow(HostOnly(addr)) {
				w.Header().Set("Retry-After", "1")
				respond.Error(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HostOnly strips the port from a remote address
func HostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	if host == "" {
		return "unknown"
	}
	return host
}
