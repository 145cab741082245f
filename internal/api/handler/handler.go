// Package handler provides HTTP handlers for all API endpoints. Scan
// triggers go through the shared runner so HTTP, cron, and NOTIFY never
// overlap.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/albapepper/campus-reminders/internal/api/respond"
	"github.com/albapepper/campus-reminders/internal/config"
	"github.com/albapepper/campus-reminders/internal/contests"
	"github.com/albapepper/campus-reminders/internal/email"
	"github.com/albapepper/campus-reminders/internal/reminders"
)

// HealthChecker verifies database connectivity. *db.Pool satisfies it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ScanRunner runs scans and remembers the last one. *reminders.Runner
// satisfies it.
type ScanRunner interface {
	Run(ctx context.Context) (reminders.Report, error)
	Start(ctx context.Context) error
	Last() (reminders.Report, bool)
}

// RunHistory reads persisted scan runs. *store.Postgres satisfies it.
type RunHistory interface {
	LastRun(ctx context.Context) (reminders.Report, bool, error)
}

// CacheStats reports cache statistics. *cache.Memory satisfies it.
type CacheStats interface {
	Stats() map[string]interface{}
}

// Deps are the collaborators handlers need. Optional fields may be nil.
type Deps struct {
	DB       HealthChecker
	Runner   ScanRunner
	History  RunHistory
	Contests contests.Provider
	Sender   email.Sender
	Cache    CacheStats
	Logger   *slog.Logger
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	db         HealthChecker
	runner     ScanRunner
	history    RunHistory
	contests   contests.Provider
	dispatcher *reminders.Dispatcher
	cache      CacheStats
	cfg        *config.Config
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a Handler with shared dependencies.
func New(deps Deps, cfg *config.Config) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		db:       deps.DB,
		runner:   deps.Runner,
		history:  deps.History,
		contests: deps.Contests,
		cache:    deps.Cache,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
	if deps.Sender != nil {
		h.dispatcher = reminders.NewDispatcher(deps.Sender, logger)
	}
	return h
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status, and enabled reminder sources.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Campus Reminders API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"sources": []string{
			string(reminders.KindAssignment),
			string(reminders.KindLab),
			string(reminders.KindContest),
		},
		"timezone": h.cfg.Location.String(),
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.db == nil || h.db.HealthCheck(r.Context()) != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": h.now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns contest cache statistics.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{"backend": "none"}
	if h.cache != nil {
		stats = h.cache.Stats()
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     stats,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
