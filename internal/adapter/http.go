package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-blog/internal/config"
	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/internal/utils"
	"github.com/MKhiriev/go-blog/models"
)

// sendPath is the relay endpoint messages are POSTed to.
const sendPath = "/send"

type httpMailAdapter struct {
	client *utils.HTTPClient

	from   string
	apiKey string

	logger *logger.Logger
}

// NewHTTPMailAdapter constructs an HTTP relay implementation of
// [MailAdapter]. It normalises and validates cfg.RelayURL and configures the
// underlying HTTP client with the resolved base URL and cfg.Timeout.
//
// Returns an error if cfg.RelayURL is empty or cannot be parsed as a valid URL.
func NewHTTPMailAdapter(cfg config.Mail, logger *logger.Logger) (MailAdapter, error) {
	baseURL, err := normalizeBaseURL(cfg.RelayURL)
	if err != nil {
		return nil, fmt.Errorf("invalid mail relay address: %w", err)
	}

	return &httpMailAdapter{
		client: utils.NewHTTPClient(baseURL, cfg.Timeout),
		from:   cfg.From,
		apiKey: strings.TrimSpace(cfg.APIKey),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Send implements [MailAdapter]. It POSTs email as JSON to the relay and
// maps non-2xx responses to the sentinel errors of this package.
func (h *httpMailAdapter) Send(ctx context.Context, email models.Email) error {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(email.To) == "" {
		return ErrEmptyRecipient
	}
	if email.From == "" {
		email.From = h.from
	}

	req := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(email)
	if h.apiKey != "" {
		req.SetAuthToken(h.apiKey)
	}

	resp, err := req.Post(sendPath)
	if err != nil {
		log.Err(err).Str("func", "httpMailAdapter.Send").Msg("mail relay request failed")
		return fmt.Errorf("send mail request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		log.Err(err).Str("func", "httpMailAdapter.Send").Int("status", resp.StatusCode()).Msg("mail relay rejected message")
		return err
	}

	log.Info().Str("func", "httpMailAdapter.Send").Str("subject", email.Subject).Msg("mail sent")
	return nil
}
