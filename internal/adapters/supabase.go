package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/companeros-en-ruta/api/internal/auth"
	"github.com/google/uuid"
	supabase "github.com/supabase-community/auth-go"
)

// SupabaseAuth implements auth.Provider on top of the Supabase auth client
type SupabaseAuth struct {
	client    supabase.Client
	transport http.RoundTripper
	timeout   time.Duration
}

// NewSupabaseAuth creates a provider adapter for the project at baseURL
func NewSupabaseAuth(baseURL, apiKey string, timeout time.Duration) *SupabaseAuth {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	authURL := strings.TrimRight(baseURL, "/") + "/auth/v1"
	return &SupabaseAuth{
		client:    supabase.New("", apiKey).WithCustomAuthURL(authURL),
		transport: http.DefaultTransport,
		timeout:   timeout,
	}
}

// GetUser returns the user owning accessToken. Rejected sessions yield
// auth.ErrNoUser; any other failure is returned wrapped.
func (s *SupabaseAuth) GetUser(ctx context.Context, accessToken string) (*auth.ProviderUser, error) {
	if accessToken == "" {
		return nil, auth.ErrNoUser
	}

	httpClient := http.Client{
		Timeout:   s.timeout,
		Transport: &sessionTransport{ctx: ctx, base: s.transport},
	}
	resp, err := s.client.WithClient(httpClient).WithToken(accessToken).GetUser()
	if err != nil {
		return nil, fmt.Errorf("auth provider: %w", err)
	}
	if resp == nil || resp.ID == uuid.Nil {
		return nil, auth.ErrNoUser
	}

	return &auth.ProviderUser{ID: resp.ID, Email: resp.Email, Role: resp.Role}, nil
}

// sessionTransport binds outgoing requests to the caller's context and
// turns a rejected session into auth.ErrNoUser.
type sessionTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req.WithContext(t.ctx))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, auth.ErrNoUser
	}
	return resp, nil
}
