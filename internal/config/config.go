package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Auth      AuthConfig
	Log       LogConfig
	CORS      CORSConfig
	Metrics   MetricsConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	LogLevel    string
	AutoMigrate bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig selects the backing store for revoked sessions.
type CacheConfig struct {
	Enabled bool
	Type    string // memory, redis
}

// AuthConfig describes the auth provider and how identity reaches the API.
type AuthConfig struct {
	SupabaseURL     string
	SupabaseAnonKey string
	JWTSecret       string
	JWTAudience     string
	ProviderTimeout time.Duration

	// IdentityHeader carries the pre-verified caller id set by the edge layer.
	IdentityHeader string
	// TrustUpstreamHeader keeps an identity header set by a proxy in front of
	// the API. When false, client-supplied values are always stripped.
	TrustUpstreamHeader bool
	SessionCookie       string
}

type LogConfig struct {
	Level  string
	Format string // json, console
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

type MetricsConfig struct {
	Enabled bool
}

// RateLimitConfig bounds requests per client IP on /api. Zero disables it.
type RateLimitConfig struct {
	PerSecond float64
	Burst     int
	// TrustedProxies keys buckets on X-Forwarded-For / X-Real-IP. Only
	// enable it behind a proxy that overwrites those headers.
	TrustedProxies bool
}

// Load reads configuration from the environment, loading a .env file first
// when one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	var errs []error
	intVal := func(key string) int {
		n, err := cast.ToIntE(v.Get(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return n
	}
	boolVal := func(key string) bool {
		b, err := cast.ToBoolE(v.Get(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return b
	}
	floatVal := func(key string) float64 {
		f, err := cast.ToFloat64E(v.Get(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return f
	}
	durVal := func(key string) time.Duration {
		d, err := cast.ToDurationE(v.Get(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return d
	}
	str := func(key string) string {
		return strings.TrimSpace(v.GetString(key))
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         str("SERVER_HOST"),
			Port:         intVal("SERVER_PORT"),
			ReadTimeout:  durVal("SERVER_READ_TIMEOUT"),
			WriteTimeout: durVal("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:        str("DB_HOST"),
			Port:        intVal("DB_PORT"),
			User:        str("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			DBName:      str("DB_NAME"),
			SSLMode:     str("DB_SSLMODE"),
			LogLevel:    str("DB_LOG_LEVEL"),
			AutoMigrate: boolVal("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     str("REDIS_HOST"),
			Port:     intVal("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       intVal("REDIS_DB"),
		},
		Cache: CacheConfig{
			Enabled: boolVal("CACHE_ENABLED"),
			Type:    str("CACHE_TYPE"),
		},
		Auth: AuthConfig{
			SupabaseURL:         strings.TrimRight(str("SUPABASE_URL"), "/"),
			SupabaseAnonKey:     str("SUPABASE_ANON_KEY"),
			JWTSecret:           str("SUPABASE_JWT_SECRET"),
			JWTAudience:         str("SUPABASE_JWT_AUDIENCE"),
			ProviderTimeout:     durVal("AUTH_PROVIDER_TIMEOUT"),
			IdentityHeader:      str("AUTH_IDENTITY_HEADER"),
			TrustUpstreamHeader: boolVal("AUTH_TRUST_UPSTREAM_HEADER"),
			SessionCookie:       str("AUTH_SESSION_COOKIE"),
		},
		Log: LogConfig{
			Level:  str("LOG_LEVEL"),
			Format: str("LOG_FORMAT"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   list(v, "CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   list(v, "CORS_ALLOWED_METHODS"),
			AllowedHeaders:   list(v, "CORS_ALLOWED_HEADERS"),
			AllowCredentials: boolVal("CORS_ALLOW_CREDENTIALS"),
		},
		Metrics: MetricsConfig{
			Enabled: boolVal("METRICS_ENABLED"),
		},
		RateLimit: RateLimitConfig{
			PerSecond:      floatVal("RATE_LIMIT_PER_SECOND"),
			Burst:          intVal("RATE_LIMIT_BURST"),
			TrustedProxies: boolVal("RATE_LIMIT_TRUST_PROXY"),
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", 15*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30*time.Second)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "postgres")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_TYPE", "memory")

	v.SetDefault("SUPABASE_JWT_AUDIENCE", "authenticated")
	v.SetDefault("AUTH_PROVIDER_TIMEOUT", 10*time.Second)
	v.SetDefault("AUTH_IDENTITY_HEADER", "X-User-Id")
	v.SetDefault("AUTH_TRUST_UPSTREAM_HEADER", false)
	v.SetDefault("AUTH_SESSION_COOKIE", "sb-access-token")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("CORS_ALLOWED_HEADERS", []string{"Accept", "Authorization", "Content-Type", "X-Tenant-ID"})
	v.SetDefault("CORS_ALLOW_CREDENTIALS", false)

	v.SetDefault("METRICS_ENABLED", true)

	v.SetDefault("RATE_LIMIT_PER_SECOND", 20.0)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("RATE_LIMIT_TRUST_PROXY", false)
}

// list reads a comma separated value. Defaults are stored as slices.
func list(v *viper.Viper, key string) []string {
	raw := v.Get(key)
	if s, ok := raw.(string); ok {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return v.GetStringSlice(key)
}

// Validate checks that required settings are present and consistent
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return errors.New("database host and name are required")
	}
	if c.Auth.SupabaseURL == "" {
		return errors.New("SUPABASE_URL is required")
	}
	if c.Auth.SupabaseAnonKey == "" {
		return errors.New("SUPABASE_ANON_KEY is required")
	}
	if strings.TrimSpace(c.Auth.IdentityHeader) == "" {
		return errors.New("AUTH_IDENTITY_HEADER must not be empty")
	}
	if c.Auth.ProviderTimeout <= 0 {
		return errors.New("AUTH_PROVIDER_TIMEOUT must be positive")
	}
	if c.RateLimit.PerSecond < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rate limit settings must not be negative")
	}
	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return errors.New("CORS_ALLOWED_ORIGINS must list explicit origins when credentials are allowed")
			}
		}
	}
	switch c.Cache.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache type: %s", c.Cache.Type)
	}
	return nil
}
