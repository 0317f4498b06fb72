package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lectio/lectio/internal/handler"
	"github.com/lectio/lectio/internal/metrics"
	"github.com/lectio/lectio/internal/middleware"
)

// subscribeScope names the rate limit bucket of the subscribe endpoint.
const subscribeScope = "subscribe"

// Routes bundles what the router mounts.
type Routes struct {
	Root    *handler.Handler
	Health  *handler.HealthHandler
	Metrics *handler.MetricsHandler
	Books   *handler.BookHandler
	Users   *handler.UserHandler
	Clubs   *handler.ClubHandler
}

// RouterConfig holds the cross-cutting middleware settings.
type RouterConfig struct {
	Logger             *slog.Logger
	Recorder           metrics.Recorder
	Security           middleware.SecurityConfig
	CORSAllowedOrigins []string
	SubscribeLimit     middleware.RateLimitConfig
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(routes Routes, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Recorder))
	r.Use(middleware.Security(cfg.Security))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
		MaxAge:         300,
	}))
	if cfg.Security.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.Security.MaxRequestBodySize))
	}

	// Operational endpoints
	r.Get("/", routes.Root.Hello)
	r.Get("/healthz", routes.Health.Healthz)
	r.Get("/readyz", routes.Health.Readyz)
	r.Get("/metrics", routes.Metrics.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Route("/books", func(r chi.Router) {
			r.Post("/", routes.Books.Create)
			r.Get("/", routes.Books.List)
			r.Get("/{id}", routes.Books.Get)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", routes.Users.Create)
			r.Get("/", routes.Users.List)
			r.Get("/{key}", routes.Users.Get)
			r.Put("/{key}", routes.Users.Update)
			r.Delete("/{key}", routes.Users.Delete)
			r.Get("/{key}/lists", routes.Users.Lists)
		})

		r.Route("/clubs", func(r chi.Router) {
			r.Post("/", routes.Clubs.Create)
			r.Get("/", routes.Clubs.List)
			r.With(middleware.RateLimitIP(subscribeScope, cfg.SubscribeLimit)).
				Post("/subscribe", routes.Clubs.Subscribe)
		})
	})

	// 404 and 405 handlers
	r.NotFound(routes.Root.NotFound)
	r.MethodNotAllowed(routes.Root.MethodNotAllowed)

	return r
}
