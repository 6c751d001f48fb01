// Package webhook provides generic webhook notification sending.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/openduty/console/internal/domain"
	"github.com/openduty/console/internal/notifications"
)

const defaultTimeout = 10 * time.Second

// Config holds webhook sender configuration. The target URL comes from each
// channel's config bag.
type Config struct {
	Timeout time.Duration
}

// Sender implements generic webhook notification sending.
type Sender struct {
	httpClient *http.Client
}

// NewSender creates a new webhook sender.
func NewSender(config Config) *Sender {
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	return &Sender{
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Type returns the channel type.
func (s *Sender) Type() domain.ChannelType {
	return domain.ChannelTypeWebhook
}

// SuccessTag returns the result tag for a successful send.
func (s *Sender) SuccessTag() string {
	return "Webhook triggered"
}

type webhookPayload struct {
	Incident *domain.Incident `json:"incident"`
	Message  string           `json:"message"`
}

// Send posts the incident and message to the channel's URL. A channel
// without a URL is skipped without a result.
func (s *Sender) Send(ctx context.Context, channel domain.NotificationChannel, msg notifications.Message) error {
	cfg, err := channel.WebhookConfig()
	if err != nil {
		return notifications.ErrSkipChannel
	}

	body, err := json.Marshal(webhookPayload{
		Incident: msg.Incident,
		Message:  msg.Body,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook error %d: %s", resp.StatusCode, string(respBody))
	}

	slog.Debug("webhook triggered", "channel", channel.Name)
	return nil
}
