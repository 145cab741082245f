// Package store persists user records and scan runs in Postgres. JSONB
// columns are decoded per row so one malformed record never aborts a scan.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/campus-reminders/internal/reminders"
)

// ErrUserNotFound is returned when an update matches no row.
var ErrUserNotFound = errors.New("user not found")

// Postgres implements reminders.UserStore and reminders.RunRecorder.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps a pool whose connections have the db package's prepared
// statements registered.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// --------------------------------------------------------------------------
// Users
// --------------------------------------------------------------------------

// ListAllUsers streams every user row to visit.
func (s *Postgres) ListAllUsers(ctx context.Context, visit func(reminders.UserRecord, error)) error {
	rows, err := s.pool.Query(ctx, "list_users")
	if err != nil {
		return fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, firstName, notifyEmail           string
			prefs, assignments, schedule, ledger []byte
		)
		if err := rows.Scan(&id, &firstName, &notifyEmail, &prefs, &assignments, &schedule, &ledger); err != nil {
			return fmt.Errorf("scan user row: %w", err)
		}
		u, decodeErr := decodeUser(id, firstName, notifyEmail, prefs, assignments, schedule, ledger)
		visit(u, decodeErr)
	}
	return rows.Err()
}

// UpdateUser applies patch in one transaction. Assignments replace the
// stored list; ledger entries are merged key by key.
func (s *Postgres) UpdateUser(ctx context.Context, id string, patch reminders.UserPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if patch.Assignments != nil {
			raw, err := json.Marshal(patch.Assignments)
			if err != nil {
				return fmt.Errorf("encode assignments: %w", err)
			}
			if err := execOne(ctx, tx, "update_user_assignments", id, raw); err != nil {
				return err
			}
		}
		if len(patch.LedgerEntries) > 0 {
			raw, err := json.Marshal(patch.LedgerEntries)
			if err != nil {
				return fmt.Errorf("encode ledger: %w", err)
			}
			if err := execOne(ctx, tx, "merge_user_ledger", id, raw); err != nil {
				return err
			}
		}
		return nil
	})
}

func execOne(ctx context.Context, tx pgx.Tx, stmt, id string, raw []byte) error {
	tag, err := tx.Exec(ctx, stmt, id, string(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", stmt, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", stmt, id, ErrUserNotFound)
	}
	return nil
}

// decodeUser builds a record from raw JSONB columns. NULL columns decode to
// their zero values.
func decodeUser(id, firstName, notifyEmail string, prefs, assignments, schedule, ledger []byte) (reminders.UserRecord, error) {
	u := reminders.UserRecord{ID: id, FirstName: firstName, NotificationEmail: notifyEmail}

	if err := unmarshalColumn("preferences", prefs, &u.Preferences); err != nil {
		return reminders.UserRecord{ID: id}, err
	}
	if err := unmarshalColumn("assignments", assignments, &u.Assignments); err != nil {
		return reminders.UserRecord{ID: id}, err
	}
	if err := unmarshalColumn("weekly_schedule", schedule, &u.WeeklySchedule); err != nil {
		return reminders.UserRecord{ID: id}, err
	}
	if err := unmarshalColumn("dedupe_ledger", ledger, &u.Ledger); err != nil {
		return reminders.UserRecord{ID: id}, err
	}
	return u, nil
}

func unmarshalColumn(column string, raw []byte, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", column, err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Scan runs
// --------------------------------------------------------------------------

// RecordRun inserts one scan report.
func (s *Postgres) RecordRun(ctx context.Context, r reminders.Report) error {
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	raw, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("encode run errors: %w", err)
	}
	_, err = s.pool.Exec(ctx, "insert_scan_run",
		r.RunID, r.StartedAt, r.Duration.Milliseconds(), r.UsersScanned, r.UsersSkipped,
		r.NotificationsSent, r.Failures, r.WriteFailures, r.ContestsLoaded, r.Truncated, string(raw))
	if err != nil {
		return fmt.Errorf("insert scan run: %w", err)
	}
	return nil
}

// LastRun returns the most recently started scan, if any.
func (s *Postgres) LastRun(ctx context.Context) (reminders.Report, bool, error) {
	var (
		r          reminders.Report
		durationMS int64
		rawErrors  []byte
	)
	err := s.pool.QueryRow(ctx, "last_scan_run").Scan(
		&r.RunID, &r.StartedAt, &durationMS, &r.UsersScanned, &r.UsersSkipped,
		&r.NotificationsSent, &r.Failures, &r.WriteFailures, &r.ContestsLoaded, &r.Truncated, &rawErrors)
	if errors.Is(err, pgx.ErrNoRows) {
		return reminders.Report{}, false, nil
	}
	if err != nil {
		return reminders.Report{}, false, fmt.Errorf("query last scan run: %w", err)
	}
	r.Duration = time.Duration(durationMS) * time.Millisecond
	if err := unmarshalColumn("errors", rawErrors, &r.Errors); err != nil {
		return reminders.Report{}, false, err
	}
	return r, true, nil
}
