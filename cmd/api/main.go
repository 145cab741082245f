// Command api is the Campus Reminders server: HTTP scan triggers, a cron
// schedule, a LISTEN/NOTIFY consumer, and maintenance tickers, all funnelled
// through one scan runner.
//
// Usage:
//
//	reminders-api
//	API_PORT=8080 SCAN_CRON="*/10 * * * *" reminders-api

// @title Campus Reminders API
// @version 1.0.0
// @description Scans student records for assignment deadlines, weekly lab slots, and programming contests, and emails one reminder per due event.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Campus Reminders
// @license.name MIT
// @securityDefinitions.apikey ScanSecret
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/campus-reminders/internal/api"
	"github.com/albapepper/campus-reminders/internal/api/handler"
	"github.com/albapepper/campus-reminders/internal/app"
	"github.com/albapepper/campus-reminders/internal/config"
	"github.com/albapepper/campus-reminders/internal/db"
	"github.com/albapepper/campus-reminders/internal/listener"
	"github.com/albapepper/campus-reminders/internal/maintenance"
	"github.com/albapepper/campus-reminders/internal/scheduler"

	_ "github.com/albapepper/campus-reminders/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		app.NewLogger("info", false).Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.LogLevel, cfg.IsProduction())

	if err := cfg.RequireScanSecret(); err != nil {
		logger.Warn("HTTP scan triggers will be rejected", "error", err)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Build the scan stack
	stack, err := app.New(ctx, cfg, pool, app.Options{}, logger)
	if err != nil {
		logger.Error("Failed to initialize scan job", "error", err)
		os.Exit(1)
	}
	defer stack.Close()

	// Cron schedule
	var sched *scheduler.Scheduler
	if cfg.ScanCron != "" && cfg.ScanCron != "off" {
		sched, err = scheduler.New(ctx, cfg.ScanCron, stack.Runner, logger)
		if err != nil {
			logger.Error("Invalid scan schedule", "error", err)
			os.Exit(1)
		}
		sched.Start()
	} else {
		logger.Info("Scan scheduler disabled (SCAN_CRON=off)")
	}

	// LISTEN/NOTIFY consumer for on-demand scans
	if cfg.ScanListen {
		go listener.Start(ctx, cfg.DatabaseURL, config.ScanChannel, stack.Runner, logger)
	}

	// Maintenance tickers (ledger prune, scan run purge, cache eviction)
	mcfg := maintenance.DefaultConfig()
	mcfg.LedgerRetention = cfg.LedgerRetention
	mcfg.ScanRunRetention = cfg.ScanRunRetention
	mcfg.Location = cfg.Location
	var evicter maintenance.Evicter
	if stack.Memory != nil {
		evicter = stack.Memory
	}
	go maintenance.Start(ctx, pool, evicter, mcfg, logger)

	// Create router
	deps := handler.Deps{
		DB:       pool,
		Runner:   stack.Runner,
		History:  stack.Store,
		Contests: stack.Contests,
		Sender:   stack.Sender,
		Logger:   logger,
	}
	if stack.Memory != nil {
		deps.Cache = stack.Memory
	}
	router := api.NewRouter(deps, cfg)

	// Create HTTP server. Synchronous scan triggers may run up to the scan
	// deadline.
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.ScanDeadline + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Campus Reminders API",
			"addr", addr,
			"environment", cfg.Environment,
			"timezone", cfg.Location.String(),
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	if sched != nil {
		select {
		case <-sched.Stop().Done():
		case <-shutdownCtx.Done():
			logger.Warn("Scheduled scan still running at shutdown")
		}
	}
	logger.Info("Server stopped")
}
