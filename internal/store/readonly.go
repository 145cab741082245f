package store

import (
	"context"
	"log/slog"

	"github.com/albapepper/campus-reminders/internal/reminders"
)

// ReadOnly forwards reads and logs writes without applying them. Used for
// dry runs.
type ReadOnly struct {
	next   reminders.UserStore
	logger *slog.Logger
}

// NewReadOnly wraps next.
func NewReadOnly(next reminders.UserStore, logger *slog.Logger) *ReadOnly {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReadOnly{next: next, logger: logger}
}

func (r *ReadOnly) ListAllUsers(ctx context.Context, visit func(reminders.UserRecord, error)) error {
	return r.next.ListAllUsers(ctx, visit)
}

func (r *ReadOnly) UpdateUser(_ context.Context, id string, patch reminders.UserPatch) error {
	r.logger.Info("dry run: skipping user update",
		"user_id", id,
		"assignments", len(patch.Assignments),
		"ledger_entries", len(patch.LedgerEntries))
	return nil
}
