package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func TestRateLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{PerSecond: 0.001, Burst: 2})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/client/me", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := call("10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d: got %d", i, code)
		}
	}
	if code := call("10.0.0.1:5678"); code != http.StatusTooManyRequests {
		t.Fatalf("over burst: got %d, want 429", code)
	}
	if code := call("10.0.0.2:1234"); code != http.StatusOK {
		t.Fatalf("other client: got %d", code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := RateLimit(RateLimitConfig{})(next)

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("got %d", rec.Code)
		}
	}
}

func TestRateLimitIgnoresForwardedHeadersByDefault(t *testing.T) {
	limited := RateLimit(RateLimitConfig{PerSecond: 0.001, Burst: 1})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h := PeerAddr(chimiddleware.RealIP(limited))

	call := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/client/me", nil)
		req.RemoteAddr = "192.0.2.10:40000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := call("198.51.100.1"); code != http.StatusOK {
		t.Fatalf("first request: got %d", code)
	}
	if code := call("198.51.100.2"); code != http.StatusTooManyRequests {
		t.Fatalf("rotated X-Forwarded-For should share the peer bucket, got %d", code)
	}
}

func TestRateLimitTrustedProxiesUsesForwardedAddress(t *testing.T) {
	limited := RateLimit(RateLimitConfig{PerSecond: 0.001, Burst: 1, TrustedProxies: true})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h := PeerAddr(chimiddleware.RealIP(limited))

	for _, forwarded := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:40000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s behind proxy: got %d", forwarded, rec.Code)
		}
	}
}

func TestHostOnly(t *testing.T) {
	tests := map[string]string{
		"10.0.0.1:1234": "10.0.0.1",
		"[2001:db8:85a3:0000:0000:8a2e:0370:7334]:65535": "2001:db8:85a3:0000:0000:8a2e:0370:7334",
		"2001:db8::1": "2001:db8::1",
		"":            "unknown",
	}
	for in, want := range tests {
		if got := HostOnly(in); got != want {
			t.Errorf("HostOnly(%q) = %q, want %q", in, got, want)
		}
	}
}
