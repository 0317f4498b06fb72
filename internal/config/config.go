// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"false"`

	// Cache (Redis)
	RedisURL     string        `env:"REDIS_URL,required"`
	BookCacheTTL time.Duration `env:"BOOK_CACHE_TTL" envDefault:"24h"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Passwords
	PasswordHashAlgo string `env:"PASSWORD_HASH_ALGO" envDefault:"argon2id"`
	// LegacyShortPasswords stores user passwords of two characters or fewer
	// unhashed, matching the behavior of the previous backend.
	LegacyShortPasswords bool `env:"LEGACY_SHORT_PASSWORDS" envDefault:"false"`

	// Rate limiting for POST /api/clubs/subscribe (per client IP)
	RateLimitSubscribeEnabled bool `env:"RATE_LIMIT_SUBSCRIBE_ENABLED" envDefault:"true"`
	RateLimitSubscribeRPS     int  `env:"RATE_LIMIT_SUBSCRIBE_RPS" envDefault:"5"`
	RateLimitSubscribeBurst   int  `env:"RATE_LIMIT_SUBSCRIBE_BURST" envDefault:"10"`

	// Activity stream
	EventsEnabled bool `env:"EVENTS_ENABLED" envDefault:"true"`

	// Tracing. An empty endpoint disables export.
	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTelServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"lectio-api"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// TracingEnabled returns true if an OTLP endpoint is configured.
func (c *Config) TracingEnabled() bool {
	return c.OTLPEndpoint != ""
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load reads an optional .env file, then parses environment variables.
// Variables already present in the environment win over the file.
// Returns an error if required variables are missing.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
