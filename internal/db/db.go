// Package db provides a pgxpool-based connection pool with prepared statement
// registration, health checking, and embedded schema migrations.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/campus-reminders/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(max(cfg.DBPoolMaxConns, cfg.ScanWorkers+2))
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// Statements lists every prepared statement by name. Callers pass the name
// as the SQL argument to Query/Exec.
var Statements = map[string]string{
	// Health
	"health_check": "SELECT 1",

	// Users
	"list_users": `SELECT id, COALESCE(first_name, ''), COALESCE(notification_email, ''),
		preferences, assignments, weekly_schedule, dedupe_ledger
		FROM users ORDER BY id`,
	"update_user_assignments": `UPDATE users SET assignments = $2::jsonb, updated_at = NOW() WHERE id = $1`,
	"merge_user_ledger": `UPDATE users
		SET dedupe_ledger = COALESCE(dedupe_ledger, '{}'::jsonb) || $2::jsonb, updated_at = NOW()
		WHERE id = $1`,

	// Scan runs
	"insert_scan_run": `INSERT INTO scan_runs (run_id, started_at, duration_ms, users_scanned, users_skipped,
		notifications_sent, failures, write_failures, contests_loaded, truncated, errors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb)`,
	"last_scan_run": `SELECT run_id::text, started_at, duration_ms, users_scanned, users_skipped,
		notifications_sent, failures, write_failures, contests_loaded, truncated, errors
		FROM scan_runs ORDER BY started_at DESC LIMIT 1`,

	// Maintenance
	"prune_ledger": `UPDATE users SET dedupe_ledger = (
			SELECT COALESCE(jsonb_object_agg(e.key, e.value), '{}'::jsonb)
			FROM jsonb_each_text(users.dedupe_ledger) AS e(key, value)
			WHERE e.value >= $1::text)
		WHERE EXISTS (
			SELECT 1 FROM jsonb_each_text(users.dedupe_ledger) AS o(key, value)
			WHERE o.value < $1::text)`,
	"purge_scan_runs": `DELETE FROM scan_runs WHERE started_at < $1`,
}

// registerPreparedStatements registers all statements the API, scan job, and
// maintenance tickers use.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	for name, sql := range Statements {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
