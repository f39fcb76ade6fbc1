// Package api provides the HTTP API server and handlers for Shelfkeep.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shelfkeep/shelfkeep-server/internal/http/response"
	"github.com/shelfkeep/shelfkeep-server/internal/ratelimit"
	"github.com/shelfkeep/shelfkeep-server/internal/store"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Options configures the parts of the server that vary by deployment.
type Options struct {
	// CORSAllowedOrigins enables CORS for these origins. Empty disables CORS.
	CORSAllowedOrigins []string
	// AuthRateLimitPerMinute caps registration and token requests per client IP.
	AuthRateLimitPerMinute int
	// Registry receives the HTTP metrics and backs /metrics. Nil creates one.
	Registry *prometheus.Registry
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	services        *Services
	router          *chi.Mux
	api             huma.API
	metrics         *httpMetrics
	authRateLimiter *ratelimit.KeyedRateLimiter
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.AuthRateLimitPerMinute <= 0 {
		opts.AuthRateLimitPerMinute = 20
	}

	s := &Server{
		store:           st,
		services:        services,
		router:          chi.NewRouter(),
		metrics:         newHTTPMetrics(opts.Registry),
		authRateLimiter: ratelimit.PerMinute(opts.AuthRateLimitPerMinute),
		logger:          logger,
	}

	s.setupMiddleware(opts)
	s.setupAPI()
	s.router.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}

func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(recoverer(s.logger))
	s.router.Use(s.metrics.middleware)

	if len(opts.CORSAllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, r.Method, s.logger)
	})
}

func (s *Server) setupAPI() {
	humaConfig := huma.DefaultConfig("Shelfkeep API", Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler(s.logger)
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerUserRoutes()
	s.registerBookRoutes()
	s.registerReviewRoutes()
	s.registerPublisherRoutes()
}
