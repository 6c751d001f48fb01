// Package matrix provides Matrix notification sending via the client-server API.
package matrix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/openduty/console/internal/domain"
	"github.com/openduty/console/internal/notifications"
)

const defaultTimeout = 10 * time.Second

// Config holds Matrix sender configuration. Home server, token and room come
// from each channel's config bag; only the HTTP timeout is global.
type Config struct {
	Timeout time.Duration
}

// Sender implements Matrix notification sending by posting m.room.message
// events to a room.
type Sender struct {
	httpClient *http.Client
}

// NewSender creates a new Matrix sender.
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
	return domain.ChannelTypeMatrix
}

// SuccessTag returns the result tag for a successful send.
func (s *Sender) SuccessTag() string {
	return "Matrix sent"
}

type messageEvent struct {
	MsgType string `json:"msgtype"`
	Body    string `json:"body"`
}

// Send posts a text message to the channel's room. Missing configuration is
// a failure for this channel, not a silent skip.
func (s *Sender) Send(ctx context.Context, channel domain.NotificationChannel, msg notifications.Message) error {
	cfg, err := channel.MatrixConfig()
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/_matrix/client/v3/rooms/%s/send/m.room.message",
		cfg.HomeServer, url.PathEscape(cfg.RoomID))

	body, err := json.Marshal(messageEvent{
		MsgType: "m.text",
		Body:    msg.Body,
	})
	if err != nil {
		return fmt.Errorf("marshal message event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("matrix api error %d: %s", resp.StatusCode, string(respBody))
	}

	slog.Debug("matrix message sent", "room_id", cfg.RoomID)
	return nil
}
