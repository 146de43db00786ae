package server

import (
	"net/http"

	"github.com/companeros-en-ruta/api/internal/auth"
	"github.com/companeros-en-ruta/api/internal/handlers"
	"github.com/companeros-en-ruta/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps bundles what the router needs
type Deps struct {
	Resolver    *auth.Resolver
	Credentials auth.CredentialOptions
	EdgeSession middleware.EdgeSessionConfig
	RateLimit   middleware.RateLimitConfig
	CORS        cors.Options

	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Loyalty *handlers.LoyaltyHandler

	// MetricsHandler is mounted at /metrics when set
	MetricsHandler http.Handler
}

// NewRouter builds the HTTP handler of the API
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.PeerAddr)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.Compress(5))
	r.Use(cors.Handler(d.CORS))

	// Health endpoints (no authentication required)
	r.Get("/health", d.Health.Health)
	r.Get("/ready", d.Health.Ready)

	if d.MetricsHandler != nil {
		r.Handle("/metrics", d.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(d.RateLimit))
		r.Use(middleware.EdgeSession(d.EdgeSession))
		r.Use(middleware.TenantID)

		r.Post("/auth/logout", d.Auth.Logout)

		require := func(resolve middleware.ResolveFunc) func(http.Handler) http.Handler {
			return middleware.RequireRole(resolve, d.Credentials)
		}

		r.Route("/admin", func(r chi.Router) {
			r.Use(require(d.Resolver.ResolveAdmin))
			r.Get("/me", d.Auth.Me)
			r.Get("/brands", d.Loyalty.ListBrands)
			r.Get("/brands/{brandID}/promotions", d.Loyalty.ListBrandPromotions)
			r.Get("/audit-logs", d.Loyalty.ListAuditLogs)
		})

		r.Route("/brand", func(r chi.Router) {
			r.Use(require(d.Resolver.ResolveBrand))
			r.Get("/me", d.Auth.Me)
			r.Get("/promotions", d.Loyalty.ListOwnPromotions)
		})

		r.Route("/promotor", func(r chi.Router) {
			r.Use(require(d.Resolver.ResolvePromotor))
			r.Get("/me", d.Auth.Me)
			r.Get("/visits", d.Loyalty.ListAssignedVisits)
		})

		r.Route("/asesor", func(r chi.Router) {
			r.Use(require(d.Resolver.ResolveAsesor))
			r.Get("/me", d.Auth.Me)
			r.Get("/visits", d.Loyalty.ListDistributorVisits)
		})

		r.Route("/supervisor", func(r chi.Router) {
			r.Use(require(d.Resolver.ResolveSupervisor))
			r.Get("/me", d.Auth.Me)
		})

		r.Route("/client", func(r chi.Router) {
			r.Use(require(d.Resolver.ResolveClient))
			r.Get("/me", d.Auth.Me)
		})
	})

	return r
}
