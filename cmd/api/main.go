// Package main is the entrypoint for the Lectio API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/lectio/lectio/internal/auth"
	"github.com/lectio/lectio/internal/cache"
	"github.com/lectio/lectio/internal/config"
	"github.com/lectio/lectio/internal/events"
	"github.com/lectio/lectio/internal/handler"
	"github.com/lectio/lectio/internal/metrics"
	"github.com/lectio/lectio/internal/middleware"
	"github.com/lectio/lectio/internal/obs"
	"github.com/lectio/lectio/internal/repository"
	"github.com/lectio/lectio/internal/server"
	"github.com/lectio/lectio/internal/service"
	"github.com/lectio/lectio/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Initialize tracing
	shutdownTracer, err := obs.InitTracer(ctx, obs.TracerConfig{
		ServiceName: cfg.OTelServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Environment: cfg.AppEnv,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		return err
	}
	if cfg.TracingEnabled() {
		logger.Info("tracing enabled", "endpoint", cfg.OTLPEndpoint)
	}

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return err
	}
	logger.Info("connected to database")

	if cfg.AutoMigrate {
		applied, err := repo.Migrate(ctx, migrations.FS)
		if err != nil {
			repo.Close()
			logger.Error("failed to apply migrations", "error", err)
			return err
		}
		logger.Info("migrations applied", "versions", applied)
	}

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		repo.Close()
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		return err
	}
	logger.Info("connected to Redis")

	hasher, err := auth.NewHasher(cfg.PasswordHashAlgo)
	if err != nil {
		repo.Close()
		_ = cacheClient.Close()
		logger.Error("invalid password hash algorithm", "algorithm", cfg.PasswordHashAlgo, "error", err)
		return err
	}

	recorder := metrics.NewInMemory()

	var sink events.Sink = events.Noop{}
	if cfg.EventsEnabled {
		sink = events.NewPublisher(cacheClient.Client(), logger, recorder)
	}

	// Initialize services
	bookService := service.NewBookService(repo, cacheClient, cfg.BookCacheTTL, logger, recorder)
	userService := service.NewUserService(repo, hasher, sink, logger, recorder, service.UserOptions{
		LegacyShortPasswords: cfg.LegacyShortPasswords,
	})
	clubService := service.NewClubService(repo, hasher, sink, logger, recorder)

	// Setup router
	security := middleware.DefaultSecurityConfig()
	security.IsDevelopment = cfg.IsDevelopment()
	security.MaxRequestBodySize = cfg.MaxRequestBodySize

	router := server.NewRouter(server.Routes{
		Root:    handler.New(obs.ServiceVersion),
		Health:  handler.NewHealthHandler(repo, cacheClient),
		Metrics: handler.NewMetricsHandler(recorder),
		Books:   handler.NewBookHandler(bookService, logger),
		Users:   handler.NewUserHandler(userService, logger),
		Clubs:   handler.NewClubHandler(clubService, logger),
	}, server.RouterConfig{
		Logger:             logger,
		Recorder:           recorder,
		Security:           security,
		CORSAllowedOrigins: cfg.GetCORSAllowedOrigins(),
		SubscribeLimit: middleware.RateLimitConfig{
			Logger:  logger,
			Limiter: cacheClient,
			Enabled: cfg.RateLimitSubscribeEnabled,
			RPS:     float64(cfg.RateLimitSubscribeRPS),
			Burst:   cfg.RateLimitSubscribeBurst,
		},
	})

	// Create and run server
	srv := server.New(router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("tracer", shutdownTracer)
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"hash_algorithm", string(hasher.Algorithm()),
		"events_enabled", cfg.EventsEnabled,
	)

	return srv.Run(ctx)
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
