package email

import (
	"context"
	"log/slog"
)

// LogSender logs messages instead of delivering them. Used for local
// development and dry runs.
type LogSender struct {
	logger *slog.Logger
}

var _ Sender = (*LogSender)(nil)

// NewLogSender creates a sender that writes to logger.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send logs the message and always succeeds for a valid message.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	s.logger.Info("email (not delivered)",
		"to", msg.To, "subject", msg.Subject, "bytes", len(msg.HTMLBody))
	return nil
}
