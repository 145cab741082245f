// Package listener provides a Postgres LISTEN/NOTIFY consumer that starts a
// scan on demand. It holds a dedicated pgx connection (not from the pool)
// listening on the `scan_requested` channel, which request_scan() notifies.
package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/campus-reminders/internal/reminders"
)

const (
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// ScanRequest is the JSON payload from pg_notify('scan_requested', ...).
// An empty payload is a valid request.
type ScanRequest struct {
	Reason    string `json:"reason"`
	Timestamp int64  `json:"ts"`
}

// Runner starts a scan. *reminders.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context) (reminders.Report, error)
}

// Start opens a dedicated connection and listens on channel. It reconnects
// automatically on connection loss. Blocks until ctx is cancelled. Intended
// to be called with `go`.
func Start(ctx context.Context, dbURL, channel string, runner Runner, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, channel, runner, logger)
		if ctx.Err() != nil {
			logger.Info("Scan listener stopped (context cancelled)")
			return
		}

		logger.Error("Scan listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, dbURL, channel string, runner Runner, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	_, err = conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize())
	if err != nil {
		return fmt.Errorf("LISTEN %s: %w", channel, err)
	}
	logger.Info("Scan listener connected", "channel", channel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		req, err := ParseRequest(notification.Payload)
		if err != nil {
			logger.Warn("Failed to parse scan request",
				"payload", notification.Payload, "error", err)
			continue
		}
		logger.Info("Scan request received", "reason", req.Reason)

		// Scan asynchronously to avoid blocking the listener
		go Handle(ctx, runner, req, logger)
	}
}

// Handle runs one requested scan. Overlapping requests are dropped.
func Handle(ctx context.Context, runner Runner, req ScanRequest, logger *slog.Logger) {
	report, err := runner.Run(ctx)
	switch {
	case errors.Is(err, reminders.ErrScanInProgress):
		logger.Info("Scan request ignored, scan already running", "reason", req.Reason)
	case err != nil:
		logger.Error("Requested scan failed", "reason", req.Reason, "error", err)
	default:
		logger.Info("Requested scan finished", "reason", req.Reason, "summary", report.Summary())
	}
}

// ParseRequest decodes a notification payload. Non-JSON payloads are taken
// as the reason text.
func ParseRequest(payload string) (ScanRequest, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return ScanRequest{Reason: "notify"}, nil
	}
	if !strings.HasPrefix(payload, "{") {
		return ScanRequest{Reason: payload}, nil
	}
	var req ScanRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return ScanRequest{}, err
	}
	if req.Reason == "" {
		req.Reason = "notify"
	}
	return req, nil
}
