package adapter

import (
	"context"
	"strings"

	"github.com/MKhiriev/go-blog/internal/config"
	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/models"
)

type logMailAdapter struct {
	from   string
	logger *logger.Logger
}

// NewLogMailAdapter returns a [MailAdapter] that only writes messages to the
// log. It is used when no relay is configured.
func NewLogMailAdapter(from string, logger *logger.Logger) MailAdapter {
	return &logMailAdapter{from: from, logger: logger}
}

func (l *logMailAdapter) Send(ctx context.Context, email models.Email) error {
	if strings.TrimSpace(email.To) == "" {
		return ErrEmptyRecipient
	}
	if email.From == "" {
		email.From = l.from
	}

	logger.FromContext(ctx).Info().
		Str("func", "logMailAdapter.Send").
		Str("to", email.To).
		Str("from", email.From).
		Str("subject", email.Subject).
		Str("text", email.Text).
		Msg("mail relay is not configured, e-mail logged")

	return nil
}

// NewMailAdapter picks the HTTP relay when cfg.RelayURL is set and the
// log-only adapter otherwise.
func NewMailAdapter(cfg config.Mail, logger *logger.Logger) (MailAdapter, error) {
	if strings.TrimSpace(cfg.RelayURL) == "" {
		logger.Warn().Msg("mail relay is not configured, e-mails will only be logged")
		return NewLogMailAdapter(cfg.From, logger), nil
	}
	return NewHTTPMailAdapter(cfg, logger)
}
