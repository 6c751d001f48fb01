// Package mattermost provides Mattermost notification sending via Incoming Webhooks.
package mattermost

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

// Config holds Mattermost sender configuration. The webhook URL comes from
// each channel's config bag.
type Config struct {
	Timeout time.Duration
}

// Sender implements Mattermost notification sending via Incoming Webhooks.
type Sender struct {
	httpClient *http.Client
}

// NewSender creates a new Mattermost sender.
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
	return domain.ChannelTypeMattermost
}

// SuccessTag returns the result tag for a successful send.
func (s *Sender) SuccessTag() string {
	return "Mattermost sent"
}

type webhookPayload struct {
	Text string `json:"text"`
}

// Send posts the message text to the channel's incoming webhook. A channel
// without a webhook URL is skipped without a result.
func (s *Sender) Send(ctx context.Context, channel domain.NotificationChannel, msg notifications.Message) error {
	cfg, err := channel.MattermostConfig()
	if err != nil {
		return notifications.ErrSkipChannel
	}

	body, err := json.Marshal(webhookPayload{Text: msg.Body})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.WebhookURL, bytes.NewReader(body))
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
		return fmt.Errorf("mattermost error %d: %s", resp.StatusCode, string(respBody))
	}

	slog.Debug("mattermost message sent", "channel", channel.Name)
	return nil
}
