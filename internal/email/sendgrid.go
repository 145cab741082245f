package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendGrid delivers through the SendGrid v3 mail API.
type SendGrid struct {
	key  string
	host string
	from *sgmail.Email
}

var _ Sender = (*SendGrid)(nil)

// NewSendGrid creates a SendGrid sender.
func NewSendGrid(apiKey, fromEmail, fromName string) *SendGrid {
	return &SendGrid{
		key:  apiKey,
		host: sendgridHost,
		from: sgmail.NewEmail(fromName, fromEmail),
	}
}

func (s *SendGrid) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail("", msg.To))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", msg.HTMLBody))
	return m
}

// Send posts one message. Any status >= 400 is an error.
func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}

	req := sendgrid.GetRequest(s.key, sendgridEndpoint, s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid returned %d: %s", res.StatusCode, truncate(res.Body, 200))
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
