// Package email sends transactional email through SendGrid or Brevo, or
// logs messages when no provider is configured for delivery.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/albapepper/campus-reminders/internal/apperr"
)

// Provider names accepted by New.
const (
	ProviderSendGrid = "sendgrid"
	ProviderBrevo    = "brevo"
	ProviderLog      = "log"
)

// Message is one outbound email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Sender delivers a message. Errors are transient from the caller's point
// of view and retried by the next scan.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Settings selects and configures a provider.
type Settings struct {
	Provider       string
	SendGridAPIKey string
	BrevoAPIKey    string
	FromEmail      string
	FromName       string
}

// New builds the configured sender. Missing credentials are reported as
// *apperr.ConfigurationError.
func New(s Settings, logger *slog.Logger) (Sender, error) {
	if logger == nil {
		logger = slog.Default()
	}
	provider := strings.ToLower(strings.TrimSpace(s.Provider))

	if provider != ProviderLog {
		if s.FromEmail == "" {
			return nil, apperr.Config("EMAIL_FROM", "sender address is required")
		}
		if _, err := mail.ParseAddress(s.FromEmail); err != nil {
			return nil, apperr.Config("EMAIL_FROM", fmt.Sprintf("invalid address: %v", err))
		}
	}

	switch provider {
	case ProviderSendGrid:
		if s.SendGridAPIKey == "" {
			return nil, apperr.Config("SENDGRID_API_KEY", "required for the sendgrid provider")
		}
		return NewSendGrid(s.SendGridAPIKey, s.FromEmail, s.FromName), nil
	case ProviderBrevo:
		if s.BrevoAPIKey == "" {
			return nil, apperr.Config("BREVO_API_KEY", "required for the brevo provider")
		}
		return NewBrevo(s.BrevoAPIKey, s.FromEmail, s.FromName), nil
	case ProviderLog:
		return NewLogSender(logger), nil
	case "":
		return nil, apperr.Config("EMAIL_PROVIDER", "not set")
	default:
		return nil, apperr.Config("EMAIL_PROVIDER", fmt.Sprintf("unknown provider %q", s.Provider))
	}
}

func validate(msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("message has no recipient")
	}
	if msg.Subject == "" {
		return fmt.Errorf("message has no subject")
	}
	return nil
}
