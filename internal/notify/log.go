package notify

import (
	"context"

	"finax/internal/logger"
)

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, m Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if s.log != nil {
		s.log.Infow("mail_logged", "kind", m.Kind, "to", m.To, "subject", m.Subject, "html_bytes", len(m.HTML))
		s.log.Debugw("mail_logged_body", "kind", m.Kind, "html", m.HTML)
	}
	return nil
}
