// Command scan is the Campus Reminders operations CLI.
//
// Usage:
//
//	reminders-scan run
//	reminders-scan run --dry-run --workers 8 --deadline 2m
//	reminders-scan migrate up
//	reminders-scan migrate down --steps 1
//	reminders-scan contests
//	reminders-scan test-email --to student@example.edu --kind lab
//	reminders-scan prune
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/campus-reminders/internal/app"
	"github.com/albapepper/campus-reminders/internal/apperr"
	"github.com/albapepper/campus-reminders/internal/config"
	"github.com/albapepper/campus-reminders/internal/db"
	"github.com/albapepper/campus-reminders/internal/email"
	"github.com/albapepper/campus-reminders/internal/maintenance"
	"github.com/albapepper/campus-reminders/internal/reminders"
)

var logger *slog.Logger

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")
	logger = app.NewLogger(os.Getenv("LOG_LEVEL"), os.Getenv("ENVIRONMENT") == "production")

	root := &cobra.Command{
		Use:           "reminders-scan",
		Short:         "Campus Reminders operations CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(runCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(contestsCmd())
	root.AddCommand(testEmailCmd())
	root.AddCommand(pruneCmd())

	if err := root.Execute(); err != nil {
		logger.Error("Command failed", "error", err, "fatal", apperr.IsFatal(err))
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// run command
// --------------------------------------------------------------------------

func runCmd() *cobra.Command {
	var (
		workers  int
		deadline time.Duration
		dryRun   bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan every user once and send due reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				stack, err := app.New(ctx, cfg, pool, app.Options{DryRun: dryRun, Workers: workers, Deadline: deadline}, logger)
				if err != nil {
					return err
				}
				defer stack.Close()

				report, err := stack.Runner.Run(ctx)
				if err != nil {
					return err
				}
				logger.Info("Scan finished", "dry_run", dryRun, "summary", report.Summary())
				for _, e := range report.Errors {
					logger.Warn("Scan error", "detail", e)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent users (default SCAN_WORKERS)")
	cmd.Flags().DurationVar(&deadline, "deadline", 0, "Run deadline (default SCAN_DEADLINE_SECONDS)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log emails instead of sending and skip all writes")
	return cmd
}

// --------------------------------------------------------------------------
// migrate command
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return db.Migrate(cfg.DatabaseURL, logger)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return db.MigrateDown(cfg.DatabaseURL, steps, logger)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

// --------------------------------------------------------------------------
// contests command
// --------------------------------------------------------------------------

func contestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contests",
		Short: "List upcoming contests from the configured sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			provider, _, rdb := app.NewContestProvider(ctx, cfg, logger)
			if rdb != nil {
				defer rdb.Close()
			}
			if provider == nil {
				return errors.New("no contest source configured (set CLIST_API_USER/CLIST_API_KEY or CONTEST_PREDICTIONS_ENABLED)")
			}

			list, err := provider.ListUpcomingContests(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range list {
				fmt.Fprintf(out, "%-10s %s  %-4s  %s\n",
					c.Site, c.StartsAt.In(cfg.Location).Format("Mon 02 Jan 15:04 MST"),
					(time.Duration(c.DurationSeconds) * time.Second).String(), c.Name)
			}
			logger.Info("Contests listed", "count", len(list))
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// test-email command
// --------------------------------------------------------------------------

func testEmailCmd() *cobra.Command {
	var to, kind, firstName string
	cmd := &cobra.Command{
		Use:   "test-email",
		Short: "Send one sample reminder through the configured provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			k, err := reminders.ParseKind(kind)
			if err != nil {
				return err
			}
			sender, err := email.New(cfg.EmailSettings(), logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			now := time.Now()
			ev := reminders.SampleEvent(k, now)
			subject := reminders.SubjectFor(ev)
			body := reminders.BodyFor(reminders.UserRecord{FirstName: firstName}, ev, now, cfg.Location)
			if err := reminders.NewDispatcher(sender, logger).Send(ctx, to, subject, body); err != nil {
				return err
			}
			logger.Info("Test email sent", "to", to, "subject", subject, "provider", cfg.EmailProvider)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Recipient address (required)")
	cmd.Flags().StringVar(&kind, "kind", "assignment", "assignment, lab, or contest")
	cmd.Flags().StringVar(&firstName, "first-name", "", "Name used in the greeting")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// --------------------------------------------------------------------------
// prune command
// --------------------------------------------------------------------------

func pruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Prune stale ledger entries and purge old scan runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				mcfg := maintenance.Config{
					LedgerRetention:  cfg.LedgerRetention,
					ScanRunRetention: cfg.ScanRunRetention,
					Location:         cfg.Location,
				}
				res := maintenance.RunOnce(ctx, pool, mcfg, time.Now(), logger)
				logger.Info("Prune finished", "summary", res.Summary())
				if len(res.Errors) > 0 {
					return fmt.Errorf("prune: %d task(s) failed", len(res.Errors))
				}
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// withPool loads config, connects to the database, and calls fn.
func withPool(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
