package reminders

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrScanInProgress is returned when a trigger fires while a scan is
// already running in this process.
var ErrScanInProgress = errors.New("scan already in progress")

// Scanner runs one scan.
type Scanner interface {
	RunScan(ctx context.Context) (Report, error)
}

// RunRecorder persists finished reports.
type RunRecorder interface {
	RecordRun(ctx context.Context, r Report) error
}

// Runner serializes triggers (HTTP, cron, NOTIFY, CLI) so at most one scan
// runs per process, and keeps the last report.
type Runner struct {
	scanner  Scanner
	recorder RunRecorder
	logger   *slog.Logger

	running sync.Mutex
	mu      sync.RWMutex
	last    *Report
}

// NewRunner wraps scanner. recorder may be nil.
func NewRunner(scanner Scanner, recorder RunRecorder, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{scanner: scanner, recorder: recorder, logger: logger}
}

// Run starts a scan unless one is already running.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	if !r.running.TryLock() {
		return Report{}, ErrScanInProgress
	}
	defer r.running.Unlock()
	return r.run(ctx)
}

// Start claims the runner and scans in the background. It returns
// ErrScanInProgress without starting anything when a scan is running.
func (r *Runner) Start(ctx context.Context) error {
	if !r.running.TryLock() {
		return ErrScanInProgress
	}
	go func() {
		defer r.running.Unlock()
		if _, err := r.run(ctx); err != nil {
			r.logger.Error("background scan failed", "error", err)
		}
	}()
	return nil
}

func (r *Runner) run(ctx context.Context) (Report, error) {
	report, err := r.scanner.RunScan(ctx)

	r.mu.Lock()
	r.last = &report
	r.mu.Unlock()

	if r.recorder != nil {
		if recErr := r.recorder.RecordRun(context.WithoutCancel(ctx), report); recErr != nil {
			r.logger.Warn("failed to record scan run", "run_id", report.RunID, "error", recErr)
		}
	}
	return report, err
}

// Last returns the most recent report, if any.
func (r *Runner) Last() (Report, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return Report{}, false
	}
	return *r.last, true
}
