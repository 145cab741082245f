package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// Brevo delivers through the Brevo (Sendinblue) transactional email API.
type Brevo struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	fromEmail  string
	fromName   string
}

var _ Sender = (*Brevo)(nil)

// NewBrevo creates a Brevo sender.
func NewBrevo(apiKey, fromEmail, fromName string) *Brevo {
	return &Brevo{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		endpoint:   brevoEndpoint,
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		fromName:   fromName,
	}
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

// Send posts one message. Any non-2xx status is an error.
func (b *Brevo) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}

	payload, err := json.Marshal(brevoRequest{
		Sender:      brevoAddress{Email: b.fromEmail, Name: b.fromName},
		To:          []brevoAddress{{Email: msg.To}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTMLBody,
	})
	if err != nil {
		return fmt.Errorf("encode brevo request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request brevo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("brevo returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return nil
}
