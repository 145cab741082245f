package reminders

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"strings"

	"github.com/albapepper/campus-reminders/internal/apperr"
	"github.com/albapepper/campus-reminders/internal/email"
)

var bodyTemplate = template.Must(template.New("body").Parse(
	`<html><body><p>{{range $i, $line := .}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p></body></html>`,
))

// Dispatcher sends one reminder email per call through the email
// collaborator.
type Dispatcher struct {
	sender email.Sender
	logger *slog.Logger
}

// NewDispatcher wraps sender.
func NewDispatcher(sender email.Sender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{sender: sender, logger: logger}
}

// Send renders body as HTML and delivers it. Failures are returned as
// *apperr.DispatchError.
func (d *Dispatcher) Send(ctx context.Context, to, subject, body string) error {
	html, err := RenderHTML(body)
	if err != nil {
		return &apperr.DispatchError{To: to, Err: err}
	}
	msg := email.Message{To: to, Subject: subject, HTMLBody: html}
	if err := d.sender.Send(ctx, msg); err != nil {
		return &apperr.DispatchError{To: to, Err: err}
	}
	d.logger.Debug("reminder sent", "to", to, "subject", subject)
	return nil
}

// RenderHTML escapes plain text and turns newlines into <br>.
func RenderHTML(text string) (string, error) {
	var buf bytes.Buffer
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if err := bodyTemplate.Execute(&buf, lines); err != nil {
		return "", err
	}
	return buf.String(), nil
}
