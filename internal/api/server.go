// Package api serves the PawHaven query API over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pawhaven/pawhaven-server/internal/auth"
	"github.com/pawhaven/pawhaven-server/internal/metrics"
	"github.com/pawhaven/pawhaven-server/internal/ratelimit"
	"github.com/pawhaven/pawhaven-server/internal/service"
)

// Services groups the business services the handlers call.
type Services struct {
	Query        *service.QueryService
	Availability *service.AvailabilityService
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Options configures a Server. Limiter, Metrics and Checks are optional.
type Options struct {
	Services       *Services
	Tokens         *auth.TokenService
	Limiter        *ratelimit.KeyedRateLimiter
	Metrics        *metrics.Metrics
	Checks         map[string]HealthCheck
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	router   *chi.Mux
	api      huma.API
	services *Services
	tokens   *auth.TokenService
	limiter  *ratelimit.KeyedRateLimiter
	metrics  *metrics.Metrics
	checks   map[string]HealthCheck
	logger   *slog.Logger
}

// NewServer creates a server with every route registered.
func NewServer(opts Options) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		services: opts.Services,
		tokens:   opts.Tokens,
		limiter:  opts.Limiter,
		metrics:  opts.Metrics,
		checks:   opts.Checks,
		logger:   opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	s.router.Use(s.authMiddleware)
	s.router.Use(s.requestLogger)
	s.router.Use(s.rateLimit)

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	RegisterErrorHandler()
	config := huma.DefaultConfig("PawHaven API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	s.api = humachi.New(s.router, config)

	s.registerHealthRoutes()
	s.registerQueryRoutes()
	s.registerUserRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
