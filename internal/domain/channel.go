package domain

import (
	"fmt"
	"time"
)

// ChannelType represents the type of a notification channel.
type ChannelType string

// Channel types.
const (
	ChannelTypeEmail      ChannelType = "email"
	ChannelTypeMatrix     ChannelType = "matrix"
	ChannelTypeMattermost ChannelType = "mattermost"
	ChannelTypeWebhook    ChannelType = "webhook"
)

// IsValid checks if the channel type is valid.
func (t ChannelType) IsValid() bool {
	switch t {
	case ChannelTypeEmail, ChannelTypeMatrix, ChannelTypeMattermost, ChannelTypeWebhook:
		return true
	}
	return false
}

// NotificationChannel is a configured external integration eligible for fan-out.
// Config holds type-specific keys; decode them with the typed config constructors
// below at dispatch time.
type NotificationChannel struct {
	ID        string            `json:"id"`
	Type      ChannelType       `json:"type"`
	Name      string            `json:"name"`
	Config    map[string]string `json:"config"`
	Enabled   bool              `json:"enabled"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// EmailChannelConfig holds the configuration of an email channel.
type EmailChannelConfig struct {
	Host             string
	Port             string
	From             string
	User             string
	Pass             string
	DefaultRecipient string
}

// EmailConfig decodes the channel's config bag into an EmailChannelConfig.
func (c *NotificationChannel) EmailConfig() (EmailChannelConfig, error) {
	cfg := EmailChannelConfig{
		Host:             c.Config["host"],
		Port:             c.Config["port"],
		From:             c.Config["from"],
		User:             c.Config["user"],
		Pass:             c.Config["pass"],
		DefaultRecipient: c.Config["defaultRecipient"],
	}
	if cfg.Host == "" {
		return cfg, missingKeyError(c, "host")
	}
	if cfg.Port == "" {
		return cfg, missingKeyError(c, "port")
	}
	if cfg.From == "" {
		return cfg, missingKeyError(c, "from")
	}
	return cfg, nil
}

// MatrixChannelConfig holds the configuration of a matrix channel.
type MatrixChannelConfig struct {
	HomeServer  string
	AccessToken string
	RoomID      string
}

// MatrixConfig decodes the channel's config bag into a MatrixChannelConfig.
func (c *NotificationChannel) MatrixConfig() (MatrixChannelConfig, error) {
	cfg := MatrixChannelConfig{
		HomeServer:  c.Config["homeServer"],
		AccessToken: c.Config["accessToken"],
		RoomID:      c.Config["roomId"],
	}
	if cfg.HomeServer == "" {
		return cfg, missingKeyError(c, "homeServer")
	}
	if cfg.AccessToken == "" {
		return cfg, missingKeyError(c, "accessToken")
	}
	if cfg.RoomID == "" {
		return cfg, missingKeyError(c, "roomId")
	}
	return cfg, nil
}

// MattermostChannelConfig holds the configuration of a mattermost channel.
type MattermostChannelConfig struct {
	WebhookURL string
}

// MattermostConfig decodes the channel's config bag into a MattermostChannelConfig.
func (c *NotificationChannel) MattermostConfig() (MattermostChannelConfig, error) {
	cfg := MattermostChannelConfig{WebhookURL: c.Config["webhookUrl"]}
	if cfg.WebhookURL == "" {
		return cfg, missingKeyError(c, "webhookUrl")
	}
	return cfg, nil
}

// WebhookChannelConfig holds the configuration of a generic webhook channel.
type WebhookChannelConfig struct {
	URL string
}

// WebhookConfig decodes the channel's config bag into a WebhookChannelConfig.
func (c *NotificationChannel) WebhookConfig() (WebhookChannelConfig, error) {
	cfg := WebhookChannelConfig{URL: c.Config["url"]}
	if cfg.URL == "" {
		return cfg, missingKeyError(c, "url")
	}
	return cfg, nil
}

func missingKeyError(c *NotificationChannel, key string) error {
	return fmt.Errorf("channel %q: missing config key %q", c.Name, key)
}
