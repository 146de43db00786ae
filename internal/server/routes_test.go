package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/companeros-en-ruta/api/internal/adapters"
	"github.com/companeros-en-ruta/api/internal/auth"
	"github.com/companeros-en-ruta/api/internal/cache"
	"github.com/companeros-en-ruta/api/internal/handlers"
	"github.com/companeros-en-ruta/api/internal/middleware"
	"github.com/companeros-en-ruta/api/internal/models"
	"github.com/companeros-en-ruta/api/internal/repository"
	"github.com/companeros-en-ruta/api/internal/services"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type profileStore map[uuid.UUID]*models.UserProfile

func (s profileStore) FindActiveProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	if p, ok := s[userID]; ok {
		return p, nil
	}
	return nil, repository.ErrProfileNotFound
}

type emptyStores struct{}

func (emptyStores) GetByID(ctx context.Context, tenantID, brandID uuid.UUID) (*models.Brand, error) {
	return nil, repository.ErrBrandNotFound
}
func (emptyStores) GetByTenantID(ctx context.Context, tenantID uuid.UUID) ([]models.Brand, error) {
	return []models.Brand{}, nil
}
func (emptyStores) GetByBrand(ctx context.Context, tenantID, brandID uuid.UUID, params models.ListParams) ([]models.Promotion, error) {
	return []models.Promotion{}, nil
}
func (emptyStores) GetByAssignee(ctx context.Context, tenantID, profileID uuid.UUID, params models.ListParams) ([]models.Visit, error) {
	return []models.Visit{}, nil
}
func (emptyStores) GetByDistributor(ctx context.Context, tenantID, distributorID uuid.UUID, params models.ListParams) ([]models.Visit, error) {
	return []models.Visit{}, nil
}
func (emptyStores) Create(ctx context.Context, entry *models.AuditLog) error { return nil }
func (emptyStores) ListByTenant(ctx context.Context, tenantID uuid.UUID, params models.ListParams) ([]models.AuditLog, error) {
	return []models.AuditLog{}, nil
}

type fixture struct {
	handler  http.Handler
	verifier *adapters.JWTSessionVerifier
	profiles profileStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	verifier, err := adapters.NewJWTSessionVerifier("router-secret", "https://project.supabase.co", "authenticated")
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	store := cache.NewMemoryCache()
	t.Cleanup(func() { store.Close() })
	revoker := cache.NewSessionRevoker(store)

	profiles := profileStore{}
	creds := auth.CredentialOptions{IdentityHeader: "X-User-Id", SessionCookie: "sb-access-token"}
	reg := prometheus.NewRegistry()

	h := NewRouter(Deps{
		Resolver:    auth.NewResolver(nil, profiles),
		Credentials: creds,
		EdgeSession: middleware.EdgeSessionConfig{
			IdentityHeader: creds.IdentityHeader,
			SessionCookie:  creds.SessionCookie,
			Verifier:       verifier,
			Revocations:    revoker,
		},
		CORS:           cors.Options{AllowedOrigins: []string{"*"}},
		Health:         handlers.NewHealthHandler(nil),
		Auth:           handlers.NewAuthHandler(revoker, creds.SessionCookie),
		Loyalty:        handlers.NewLoyaltyHandler(services.NewLoyaltyService(emptyStores{}, emptyStores{}, emptyStores{}, emptyStores{})),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	return &fixture{handler: h, verifier: verifier, profiles: profiles}
}

// addUser registers a profile holding one active assignment and returns a
// session token for it
func (f *fixture) addUser(t *testing.T, assignment models.UserRole) (string, *models.UserProfile) {
	t.Helper()
	profile := &models.UserProfile{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Status:   models.StatusActive,
	}
	assignment.ID = uuid.New()
	assignment.UserProfileID = profile.ID
	assignment.Status = models.StatusActive
	profile.Roles = []models.UserRole{assignment}
	f.profiles[profile.UserID] = profile

	token, err := f.verifier.Sign(profile.UserID.String(), time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token, profile
}

func (f *fixture) do(method, path, token string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouterPromotorMe(t *testing.T) {
	f := newFixture(t)
	brandID := uuid.New()
	token, profile := f.addUser(t, models.UserRole{Role: models.RolePromotor, BrandID: &brandID})

	rec := f.do(http.MethodGet, "/api/promotor/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		TenantID      uuid.UUID  `json:"tenantId"`
		UserProfileID uuid.UUID  `json:"userProfileId"`
		BrandID       *uuid.UUID `json:"brandId"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.TenantID != profile.TenantID || body.UserProfileID != profile.ID {
		t.Errorf("unexpected context: %+v", body)
	}
	if body.BrandID == nil || *body.BrandID != brandID {
		t.Errorf("brand: got %v", body.BrandID)
	}
}

func TestRouterRejections(t *testing.T) {
	f := newFixture(t)
	clientToken, clientProfile := f.addUser(t, models.UserRole{Role: models.RoleClient})
	orphanToken, err := f.verifier.Sign(uuid.NewString(), time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		token   string
		headers map[string]string
		want    int
	}{
		{"no session", "/api/admin/me", "", nil, http.StatusUnauthorized},
		{"spoofed identity header", "/api/client/me", "", map[string]string{"X-User-Id": clientProfile.UserID.String()}, http.StatusUnauthorized},
		{"wrong role", "/api/admin/me", clientToken, nil, http.StatusForbidden},
		{"no profile", "/api/client/me", orphanToken, nil, http.StatusNotFound},
		{"malformed tenant", "/api/client/me", clientToken, map[string]string{"X-Tenant-ID": "acme"}, http.StatusBadRequest},
		{"other tenant", "/api/client/me", clientToken, map[string]string{"X-Tenant-ID": uuid.NewString()}, http.StatusForbidden},
		{"own tenant", "/api/client/me", clientToken, map[string]string{"X-Tenant-ID": clientProfile.TenantID.String()}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodGet, tt.path, tt.token, tt.headers)
			if rec.Code != tt.want {
				t.Fatalf("status: got %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestRouterBrandWithoutBrandIDIsForbidden(t *testing.T) {
	f := newFixture(t)
	token, _ := f.addUser(t, models.UserRole{Role: models.RoleBrand})

	if rec := f.do(http.MethodGet, "/api/brand/promotions", token, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want 403", rec.Code)
	}
}

func TestRouterAdminBrandPromotions(t *testing.T) {
	f := newFixture(t)
	token, _ := f.addUser(t, models.UserRole{Role: models.RoleAdmin})

	if rec := f.do(http.MethodGet, "/api/admin/brands/not-a-uuid/promotions", token, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: got %d, want 400", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/api/admin/brands/"+uuid.NewString()+"/promotions", token, nil); rec.Code != http.StatusNotFound {
		t.Errorf("foreign brand: got %d, want 404", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/api/admin/brands", token, nil); rec.Code != http.StatusOK {
		t.Errorf("brands: got %d, want 200", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/api/admin/audit-logs?limit=10", token, nil); rec.Code != http.StatusOK {
		t.Errorf("audit logs: got %d, want 200", rec.Code)
	}
}

func TestRouterSupervisorAcceptsAdmin(t *testing.T) {
	f := newFixture(t)
	token, _ := f.addUser(t, models.UserRole{Role: models.RoleAdmin})

	if rec := f.do(http.MethodGet, "/api/supervisor/me", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
}

func TestRouterLogoutRevokesSession(t *testing.T) {
	f := newFixture(t)
	token, _ := f.addUser(t, models.UserRole{Role: models.RoleAsesorDeVentas})

	if rec := f.do(http.MethodGet, "/api/asesor/me", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("before logout: got %d", rec.Code)
	}
	if rec := f.do(http.MethodPost, "/api/auth/logout", token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: got %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/api/asesor/me", token, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("after logout: got %d, want 401", rec.Code)
	}
}

func TestRouterPublicEndpoints(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		if rec := f.do(http.MethodGet, path, "", nil); rec.Code != http.StatusOK {
			t.Errorf("%s: got %d, want 200", path, rec.Code)
		}
	}
}
