package mail

import (
	"context"

	"go.uber.org/zap"

	"github.com/blackrosevn/Dev02-Reporting/config"
)

// LogSender writes messages to the logger instead of delivering them.
type LogSender struct {
	logger *zap.Logger
	prefix string
}

// NewLogSender builds a development sender.
func NewLogSender(cfg *config.MailConfig, logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger.Named("mail"), prefix: cfg.SubjectPrefix}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("email",
		zap.String("to", to),
		zap.String("subject", prefixed(s.prefix, subject)),
		zap.String("body", body),
	)
	return nil
}
