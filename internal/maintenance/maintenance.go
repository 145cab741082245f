// Package maintenance runs periodic background tasks as Go tickers: pruning
// stale dedupe ledger entries, purging old scan runs, and evicting expired
// cache entries.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the subset of pgxpool.Pool the tasks need.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Evicter drops expired cache entries.
type Evicter interface {
	Evict() int
}

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	PruneInterval    time.Duration // Ledger prune + scan run purge
	EvictInterval    time.Duration // In-memory cache eviction
	LedgerRetention  time.Duration
	ScanRunRetention time.Duration
	Location         *time.Location
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		PruneInterval:    6 * time.Hour,
		EvictInterval:    10 * time.Minute,
		LedgerRetention:  14 * 24 * time.Hour,
		ScanRunRetention: 30 * 24 * time.Hour,
		Location:         time.UTC,
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`. cache may be nil.
func Start(ctx context.Context, db Execer, cache Evicter, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"prune", cfg.PruneInterval,
		"evict", cfg.EvictInterval,
		"ledger_retention", cfg.LedgerRetention)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	if cfg.PruneInterval > 0 {
		t := time.NewTicker(cfg.PruneInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, "prune", func() { RunOnce(ctx, db, cfg, time.Now(), logger) })
	}

	if cfg.EvictInterval > 0 && cache != nil {
		t := time.NewTicker(cfg.EvictInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, "evict", func() {
			if n := cache.Evict(); n > 0 {
				logger.Debug("Evicted expired cache entries", "count", n)
			}
		})
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, name string, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}
