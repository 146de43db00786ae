package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/companeros-en-ruta/api/internal/adapters"
	"github.com/companeros-en-ruta/api/internal/auth"
	"github.com/companeros-en-ruta/api/internal/cache"
	"github.com/companeros-en-ruta/api/internal/config"
	"github.com/companeros-en-ruta/api/internal/database"
	"github.com/companeros-en-ruta/api/internal/handlers"
	"github.com/companeros-en-ruta/api/internal/middleware"
	"github.com/companeros-en-ruta/api/internal/repository"
	"github.com/companeros-en-ruta/api/internal/server"
	"github.com/companeros-en-ruta/api/internal/services"
	"github.com/companeros-en-ruta/api/pkg/logger"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting Compañeros en Ruta API")

	dbConfig := database.Config{
		Host:        cfg.Database.Host,
		Port:        cfg.Database.Port,
		User:        cfg.Database.User,
		Password:    cfg.Database.Password,
		DBName:      cfg.Database.DBName,
		SSLMode:     cfg.Database.SSLMode,
		LogLevel:    cfg.Database.LogLevel,
		AutoMigrate: cfg.Database.AutoMigrate,
	}

	if err := database.Connect(dbConfig); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	healthDeps := map[string]handlers.Pinger{
		"database": handlers.PingFunc(func(ctx context.Context) error {
			return database.Ping(ctx, database.DB)
		}),
	}

	// Session revocation store
	var store cache.Cache
	if cfg.Cache.Enabled && cfg.Cache.Type == "redis" {
		addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		redisCache, err := cache.NewRedisCache(addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		healthDeps["redis"] = redisCache
		store = redisCache
		log.Info().Msg("Redis session store initialized")
	} else {
		store = cache.NewMemoryCache()
		log.Info().Msg("Memory session store initialized")
	}
	defer store.Close()
	revoker := cache.NewSessionRevoker(store)

	// Auth provider and local session verification
	provider := adapters.NewSupabaseAuth(cfg.Auth.SupabaseURL, cfg.Auth.SupabaseAnonKey, cfg.Auth.ProviderTimeout)

	var verifier middleware.SessionVerifier
	if cfg.Auth.JWTSecret != "" {
		v, err := adapters.NewJWTSessionVerifier(cfg.Auth.JWTSecret, cfg.Auth.SupabaseURL, cfg.Auth.JWTAudience)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid session verifier configuration")
		}
		verifier = v
	} else {
		log.Warn().Msg("SUPABASE_JWT_SECRET not set, every request will be verified with the auth provider")
	}

	// Repositories, resolver and services
	profileRepo := repository.NewProfileRepository(database.DB)
	brandRepo := repository.NewBrandRepository(database.DB)
	promotionRepo := repository.NewPromotionRepository(database.DB)
	visitRepo := repository.NewVisitRepository(database.DB)
	auditRepo := repository.NewAuditRepository(database.DB)

	resolver := auth.NewResolver(provider, profileRepo)
	loyaltyService := services.NewLoyaltyService(brandRepo, promotionRepo, visitRepo, auditRepo)

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		if err := middleware.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
			log.Fatal().Err(err).Msg("Failed to register HTTP metrics")
		}
		if err := auth.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
			log.Fatal().Err(err).Msg("Failed to register auth metrics")
		}
		metricsHandler = promhttp.Handler()
	}

	credentials := auth.CredentialOptions{
		IdentityHeader: cfg.Auth.IdentityHeader,
		SessionCookie:  cfg.Auth.SessionCookie,
	}

	router := server.NewRouter(server.Deps{
		Resolver:    resolver,
		Credentials: credentials,
		EdgeSession: middleware.EdgeSessionConfig{
			IdentityHeader: cfg.Auth.IdentityHeader,
			SessionCookie:  cfg.Auth.SessionCookie,
			TrustUpstream:  cfg.Auth.TrustUpstreamHeader,
			Verifier:       verifier,
			Revocations:    revoker,
		},
		RateLimit: middleware.RateLimitConfig{
			PerSecond:      cfg.RateLimit.PerSecond,
			Burst:          cfg.RateLimit.Burst,
			TrustedProxies: cfg.RateLimit.TrustedProxies,
		},
		CORS: cors.Options{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   cfg.CORS.AllowedMethods,
			AllowedHeaders:   cfg.CORS.AllowedHeaders,
			ExposedHeaders:   []string{"Content-Length", "Content-Type"},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           300,
		},
		Health:         handlers.NewHealthHandler(healthDeps),
		Auth:           handlers.NewAuthHandler(revoker, cfg.Auth.SessionCookie),
		Loyalty:        handlers.NewLoyaltyHandler(loyaltyService),
		MetricsHandler: metricsHandler,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
