// Package mail delivers outbound email through SMTP, SendGrid or the log.
package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/blackrosevn/Dev02-Reporting/config"
)

// Sender delivers a single plain-text message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New selects the sender configured by cfg.Driver.
func New(cfg *config.MailConfig, logger *zap.Logger) (Sender, error) {
	switch cfg.Driver {
	case "smtp":
		return NewSMTPSender(cfg), nil
	case "sendgrid":
		return NewSendgridSender(cfg), nil
	case "log", "":
		return NewLogSender(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}

func prefixed(prefix, subject string) string {
	if prefix == "" {
		return subject
	}
	return prefix + " " + subject
}
