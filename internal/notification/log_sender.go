package notification

import (
	"context"
	"log/slog"
)

// logSender logs messages instead of delivering them. Used when no
// Postmark credentials are configured.
type logSender struct{}

func NewLogSender() EmailSender {
	return logSender{}
}

func (logSender) SendEmail(_ context.Context, params SendEmailParams) error {
	slog.Info("email (not sent, dev sender)",
		"to", params.SendTo,
		"subject", params.Subject,
		"tag", params.Tag,
	)
	return nil
}
