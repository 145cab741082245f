// Package app wires configuration into the scan job and its collaborators.
// Shared by cmd/api and cmd/scan so both entry points build the same stack.
package app

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/albapepper/campus-reminders/internal/cache"
	"github.com/albapepper/campus-reminders/internal/config"
	"github.com/albapepper/campus-reminders/internal/contests"
	"github.com/albapepper/campus-reminders/internal/db"
	"github.com/albapepper/campus-reminders/internal/email"
	"github.com/albapepper/campus-reminders/internal/reminders"
	"github.com/albapepper/campus-reminders/internal/store"
)

// Options adjust the stack for one invocation.
type Options struct {
	// DryRun logs emails and skips every write.
	DryRun bool
	// Workers and Deadline override the configured values when positive.
	Workers  int
	Deadline time.Duration
}

// App is the assembled scan stack.
type App struct {
	Store    *store.Postgres
	Sender   email.Sender
	Contests contests.Provider
	Memory   *cache.Memory
	Runner   *reminders.Runner

	redis *cache.Redis
}

// New builds the stack on top of pool. A missing email provider or sender
// address is returned as a ConfigurationError.
func New(ctx context.Context, cfg *config.Config, pool *db.Pool, opts Options, logger *slog.Logger) (*App, error) {
	a := &App{Store: store.NewPostgres(pool.Pool)}

	settings := cfg.EmailSettings()
	if opts.DryRun {
		settings.Provider = email.ProviderLog
	}
	sender, err := email.New(settings, logger)
	if err != nil {
		return nil, err
	}
	a.Sender = sender

	a.Contests, a.Memory, a.redis = NewContestProvider(ctx, cfg, logger)

	var userStore reminders.UserStore = a.Store
	var recorder reminders.RunRecorder = a.Store
	if opts.DryRun {
		userStore = store.NewReadOnly(a.Store, logger)
		recorder = nil
	}

	scanCfg := cfg.ScanConfig()
	if opts.Workers > 0 {
		scanCfg.Workers = opts.Workers
	}
	if opts.Deadline > 0 {
		scanCfg.Deadline = opts.Deadline
	}

	job, err := reminders.NewJob(userStore, a.Sender, a.Contests, scanCfg, logger)
	if err != nil {
		return nil, err
	}
	a.Runner = reminders.NewRunner(job, recorder, logger)
	return a, nil
}

// Close releases the optional Redis connection.
func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// NewContestProvider merges clist.by and predicted series behind a cache.
// Redis is used when REDIS_URL is set and reachable; otherwise an in-memory
// cache. Returns a nil provider when no source is enabled.
func NewContestProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (contests.Provider, *cache.Memory, *cache.Redis) {
	var sources []contests.Provider
	if clist := contests.NewClistClient(cfg.ClistBaseURL, cfg.ClistAPIUser, cfg.ClistAPIKey, cfg.ClistRequestsPerMinute, logger); clist != nil {
		sources = append(sources, clist)
		logger.Info("Contest source enabled", "source", "clist.by")
	}
	if cfg.ContestPredictionsEnabled {
		sources = append(sources, contests.NewPredictor(contests.DefaultSeries, time.Now))
		logger.Info("Contest source enabled", "source", "predicted series")
	}
	if len(sources) == 0 {
		logger.Info("Contest reminders disabled (no contest source)")
		return nil, nil, nil
	}
	merged := contests.NewComposite(logger, sources...)

	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err == nil {
			logger.Info("Contest cache initialized", "backend", "redis")
			return contests.NewCached(merged, rdb, cfg.ContestCacheTTL, logger), nil, rdb
		}
		logger.Warn("Redis unavailable, falling back to in-memory cache", "error", err)
	}
	mem := cache.NewMemory()
	logger.Info("Contest cache initialized", "backend", "memory", "ttl", cfg.ContestCacheTTL)
	return contests.NewCached(merged, mem, cfg.ContestCacheTTL, logger), mem, nil
}

// NewLogger builds the process logger at the configured level. JSON output
// is used in production, text elsewhere.
func NewLogger(level string, jsonOutput bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if jsonOutput {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// ParseLevel maps debug/info/warn/error to slog levels, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
