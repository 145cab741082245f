// Package scheduler fires scans on a cron schedule. Overlapping ticks are
// skipped rather than queued.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/albapepper/campus-reminders/internal/reminders"
)

// Runner starts a scan. *reminders.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context) (reminders.Report, error)
}

// Scheduler owns one cron instance with a single scan entry.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	entry  cron.EntryID
	logger *slog.Logger
}

// New parses spec (standard 5-field cron, or descriptors such as "@every 5m")
// and registers the scan. Ticks run with ctx's values but are not cancelled
// with it; Stop waits for the running scan instead.
func New(ctx context.Context, spec string, runner Runner, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}
	c := cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)), cron.WithLogger(cl))

	id, err := c.AddFunc(spec, func() { tick(ctx, runner, logger) })
	if err != nil {
		return nil, fmt.Errorf("parse scan schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c, spec: spec, entry: id, logger: logger}, nil
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scan scheduler started", "schedule", s.spec, "next", s.cron.Entry(s.entry).Next)
}

// Stop halts the schedule and returns a context that is done once any
// running scan finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func tick(ctx context.Context, runner Runner, logger *slog.Logger) {
	report, err := runner.Run(context.WithoutCancel(ctx))
	switch {
	case errors.Is(err, reminders.ErrScanInProgress):
		logger.Info("Scheduled scan skipped, scan already running")
	case err != nil:
		logger.Error("Scheduled scan failed", "error", err)
	default:
		logger.Info("Scheduled scan finished", "summary", report.Summary())
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
