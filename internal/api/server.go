// Package api provides the HTTP API server and handlers for the ReadingLog application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/readinglog/readinglog-server/internal/config"
	"github.com/readinglog/readinglog-server/internal/metrics"
	"github.com/readinglog/readinglog-server/internal/ratelimit"
	"github.com/readinglog/readinglog-server/internal/store"
)

// Auth rate limit used when the configuration leaves it unset.
const (
	defaultAuthRatePerMinute = 20
	defaultAuthRateBurst     = 10
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	services        *Services
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	metrics         *metrics.Metrics
	authRateLimiter *ratelimit.KeyedRateLimiter
	config          *config.Config
}

// NewServer creates a new HTTP server with all routes configured.
// m may be nil, in which case /metrics is not served.
func NewServer(cfg *config.Config, st store.Store, services *Services, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	perMinute, burst := cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst
	if perMinute <= 0 {
		perMinute = defaultAuthRatePerMinute
	}
	if burst <= 0 {
		burst = defaultAuthRateBurst
	}

	router := chi.NewRouter()

	s := &Server{
		store:           st,
		services:        services,
		router:          router,
		logger:          logger,
		metrics:         m,
		authRateLimiter: ratelimit.PerMinute(perMinute, burst),
		config:          cfg,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("ReadingLog API", "1.0.0")
	humaConfig.Info.Description = "Personal library tracking: catalog, lists, collection and moderated reviews."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler(logger)

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}

// setupMiddleware configures the middleware stack. chi requires this to run
// before any route is registered.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(authMiddleware(s.services.Auth))
}

func (s *Server) allowedOrigins() []string {
	if len(s.config.Server.AllowedOrigins) > 0 {
		return s.config.Server.AllowedOrigins
	}
	return []string{"*"}
}

// setupRoutes registers every operation.
func (s *Server) setupRoutes() {
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerBookRoutes()
	s.registerAuthorRoutes()
	s.registerGenreRoutes()
	s.registerSearchRoutes()
	s.registerListRoutes()
	s.registerReviewRoutes()
	s.registerCollectionRoutes()
	s.registerAdminRoutes()
}
