package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/companeros-en-ruta/api/internal/auth"
	"github.com/companeros-en-ruta/api/internal/models"
	"github.com/companeros-en-ruta/api/internal/repository"
	"github.com/google/uuid"
)

type profileMap map[uuid.UUID]*models.UserProfile

func (m profileMap) FindActiveProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	if p, ok := m[userID]; ok {
		return p, nil
	}
	return nil, repository.ErrProfileNotFound
}

type brokenStore struct{}

func (brokenStore) FindActiveProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	return nil, errors.New("connection reset")
}

var opts = auth.CredentialOptions{IdentityHeader: "X-User-Id", SessionCookie: "sb-access-token"}

func promotorProfile(brandID uuid.UUID) *models.UserProfile {
	id := uuid.New()
	return &models.UserProfile{
		ID:       id,
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Status:   models.StatusActive,
		Roles: []models.UserRole{{
			ID:            uuid.New(),
			UserProfileID: id,
			Role:          models.RolePromotor,
			Status:        models.StatusActive,
			BrandID:       &brandID,
		}},
	}
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body.Error
}

func TestRequireRole(t *testing.T) {
	brandID := uuid.New()
	profile := promotorProfile(brandID)
	resolver := auth.NewResolver(nil, profileMap{profile.UserID: profile})

	tests := []struct {
		name       string
		resolve    ResolveFunc
		userID     string
		wantStatus int
		wantError  string
	}{
		{"success", resolver.ResolvePromotor, profile.UserID.String(), http.StatusOK, ""},
		{"no credentials", resolver.ResolvePromotor, "", http.StatusUnauthorized, "Not authenticated"},
		{"unknown user", resolver.ResolvePromotor, uuid.NewString(), http.StatusNotFound, "User profile not found"},
		{"wrong role", resolver.ResolveAdmin, profile.UserID.String(), http.StatusForbidden, "Forbidden: admin role required"},
		{"store down", auth.NewResolver(nil, brokenStore{}).ResolvePromotor, uuid.NewString(), http.StatusServiceUnavailable, "Authorization service unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *auth.Context
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = auth.FromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/promotor/me", nil)
			if tt.userID != "" {
				req.Header.Set("X-User-Id", tt.userID)
			}
			rec := httptest.NewRecorder()
			RequireRole(tt.resolve, opts)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				if got != nil {
					t.Fatal("handler must not run on failure")
				}
				if msg := errorBody(t, rec); msg != tt.wantError {
					t.Errorf("error: got %q, want %q", msg, tt.wantError)
				}
				return
			}
			if got == nil || got.BrandID == nil || *got.BrandID != brandID {
				t.Fatalf("context not propagated: %+v", got)
			}
		})
	}
}

func TestWriteAuthErrorChallenge(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAuthError(rec, &auth.Error{Kind: auth.KindUnauthenticated, Message: "Not authenticated"})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("missing WWW-Authenticate header")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}
}

func TestWriteAuthErrorUnknown(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAuthError(rec, errors.New("surprise"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", rec.Code)
	}
}
