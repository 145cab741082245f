// Package api wires the HTTP router: middleware, health checks, docs, and
// the v1 scan and contest routes.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/albapepper/campus-reminders/internal/api/handler"
	"github.com/albapepper/campus-reminders/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(deps handler.Deps, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Authorization", "Content-Type", "If-None-Match", "X-Scan-Secret"},
		ExposedHeaders:   []string{"X-Process-Time", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(deps, cfg)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Contests (public)
		r.Get("/contests", h.ListContests)

		// Scan triggers: POST for callers, GET for cron platforms
		r.Group(func(r chi.Router) {
			r.Use(RequireSecret(cfg.ScanSecret))
			r.Post("/scan", h.TriggerScan)
			r.Get("/scan", h.TriggerScan)
			r.Get("/scan/last", h.LastScan)
		})

		// Test notifications (development only)
		r.Group(func(r chi.Router) {
			r.Use(DevOnly(cfg.IsDevelopment()))
			r.Use(RequireSecret(cfg.ScanSecret))
			r.Post("/notifications/test", h.TestNotification)
		})
	})

	return r
}
