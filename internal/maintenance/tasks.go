package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Result summarizes one maintenance pass.
type Result struct {
	LedgerUsersPruned int64
	ScanRunsPurged    int64
	Errors            []string
}

// Summary returns a human-readable summary.
func (r *Result) Summary() string {
	return fmt.Sprintf("ledger_users=%d scan_runs=%d errors=%d",
		r.LedgerUsersPruned, r.ScanRunsPurged, len(r.Errors))
}

// RunOnce prunes the ledger and purges old scan runs. Each task runs even
// when the other fails.
func RunOnce(ctx context.Context, db Execer, cfg Config, now time.Time, logger *slog.Logger) Result {
	var res Result

	if cfg.LedgerRetention > 0 {
		n, err := PruneLedger(ctx, db, LedgerCutoff(now, cfg.LedgerRetention, cfg.Location))
		if err != nil {
			logger.Warn("Maintenance: failed to prune ledger", "error", err)
			res.Errors = append(res.Errors, err.Error())
		} else if n > 0 {
			logger.Info("Maintenance: pruned ledger entries", "users", n)
		}
		res.LedgerUsersPruned = n
	}

	if cfg.ScanRunRetention > 0 {
		n, err := PurgeScanRuns(ctx, db, now.Add(-cfg.ScanRunRetention))
		if err != nil {
			logger.Warn("Maintenance: failed to purge scan runs", "error", err)
			res.Errors = append(res.Errors, err.Error())
		} else if n > 0 {
			logger.Info("Maintenance: purged scan runs", "count", n)
		}
		res.ScanRunsPurged = n
	}
	return res
}

// LedgerCutoff returns the oldest ledger date worth keeping. Entries dated
// before it can never match a current event again.
func LedgerCutoff(now time.Time, retention time.Duration, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Add(-retention).Format("2006-01-02")
}

// PruneLedger removes ledger entries dated before cutoff and returns the
// number of users touched.
func PruneLedger(ctx context.Context, db Execer, cutoff string) (int64, error) {
	tag, err := db.Exec(ctx, "prune_ledger", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune ledger: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PurgeScanRuns deletes scan runs started before cutoff.
func PurgeScanRuns(ctx context.Context, db Execer, cutoff time.Time) (int64, error) {
	tag, err := db.Exec(ctx, "purge_scan_runs", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge scan runs: %w", err)
	}
	return tag.RowsAffected(), nil
}
