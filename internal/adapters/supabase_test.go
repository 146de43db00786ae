package adapters

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/companeros-en-ruta/api/internal/auth"
	"github.com/google/uuid"
)

func TestSupabaseGetUser(t *testing.T) {
	userID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("apikey") != "anon-key" {
			t.Errorf("missing apikey header")
		}
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"` + userID.String() + `","email":"ana@example.com","role":"authenticated"}`))
		case "Bearer weird":
			w.Write([]byte(`{"id":"not-a-uuid"}`))
		case "Bearer banned":
			w.WriteHeader(http.StatusForbidden)
		case "Bearer broken":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`upstream error`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"msg":"invalid JWT"}`))
		}
	}))
	defer server.Close()

	provider := NewSupabaseAuth(server.URL+"/", "anon-key", time.Second)

	user, err := provider.GetUser(context.Background(), "good")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.ID != userID || user.Email != "ana@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}

	for _, token := range []string{"expired", "banned", ""} {
		if _, err := provider.GetUser(context.Background(), token); !errors.Is(err, auth.ErrNoUser) {
			t.Errorf("token %q: expected ErrNoUser, got %v", token, err)
		}
	}

	for _, token := range []string{"broken", "weird"} {
		if _, err := provider.GetUser(context.Background(), token); err == nil || errors.Is(err, auth.ErrNoUser) {
			t.Errorf("token %q: expected upstream error, got %v", token, err)
		}
	}
}

func TestSupabaseGetUserHonorsContextAndTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	provider := NewSupabaseAuth(server.URL, "anon-key", time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := provider.GetUser(ctx, "good"); err == nil {
		t.Fatal("expected error after context deadline")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("request outlived its context: %v", elapsed)
	}

	slow := NewSupabaseAuth(server.URL, "anon-key", 50*time.Millisecond)
	if _, err := slow.GetUser(context.Background(), "good"); err == nil {
		t.Fatal("expected error after client timeout")
	}
}

func TestSupabaseGetUserUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	provider := NewSupabaseAuth(url, "anon-key", time.Second)
	if _, err := provider.GetUser(context.Background(), "good"); err == nil {
		t.Fatal("expected error for unreachable provider")
	}
}

func TestSupabaseResolverIntegration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	r := auth.NewResolver(NewSupabaseAuth(server.URL, "anon-key", time.Second), nil)
	_, err := r.Identify(context.Background(), auth.Credentials{AccessToken: "expired"})
	if !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}
