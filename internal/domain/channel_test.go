package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationChannel_EmailConfig(t *testing.T) {
	t.Run("complete config decodes", func(t *testing.T) {
		ch := &NotificationChannel{Name: "mail", Config: map[string]string{
			"host":             "smtp.example.org",
			"port":             "587",
			"from":             "console@example.org",
			"user":             "console",
			"pass":             "secret",
			"defaultRecipient": "oncall@example.org",
		}}

		cfg, err := ch.EmailConfig()
		require.NoError(t, err)
		assert.Equal(t, "smtp.example.org", cfg.Host)
		assert.Equal(t, "587", cfg.Port)
		assert.Equal(t, "oncall@example.org", cfg.DefaultRecipient)
	})

	t.Run("optional keys may be absent", func(t *testing.T) {
		ch := &NotificationChannel{Name: "mail", Config: map[string]string{
			"host": "smtp.example.org",
			"port": "25",
			"from": "console@example.org",
		}}

		cfg, err := ch.EmailConfig()
		require.NoError(t, err)
		assert.Empty(t, cfg.User)
		assert.Empty(t, cfg.DefaultRecipient)
	})

	t.Run("missing required key is named in the error", func(t *testing.T) {
		ch := &NotificationChannel{Name: "mail", Config: map[string]string{
			"host": "smtp.example.org",
			"from": "console@example.org",
		}}

		_, err := ch.EmailConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"port"`)
		assert.Contains(t, err.Error(), `"mail"`)
	})
}

func TestNotificationChannel_MatrixConfig(t *testing.T) {
	ch := &NotificationChannel{Name: "ops-room", Config: map[string]string{
		"homeServer":  "https://matrix.example.org",
		"accessToken": "syt_token",
		"roomId":      "!ops:example.org",
	}}

	cfg, err := ch.MatrixConfig()
	require.NoError(t, err)
	assert.Equal(t, "!ops:example.org", cfg.RoomID)

	delete(ch.Config, "accessToken")
	_, err = ch.MatrixConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"accessToken"`)
}

func TestNotificationChannel_MattermostConfig(t *testing.T) {
	ch := &NotificationChannel{Name: "mm", Config: map[string]string{}}
	_, err := ch.MattermostConfig()
	assert.Error(t, err)

	ch.Config["webhookUrl"] = "https://mm.example.org/hooks/abc"
	cfg, err := ch.MattermostConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://mm.example.org/hooks/abc", cfg.WebhookURL)
}

func TestNotificationChannel_WebhookConfig(t *testing.T) {
	ch := &NotificationChannel{Name: "hook", Config: nil}
	_, err := ch.WebhookConfig()
	assert.Error(t, err)

	ch.Config = map[string]string{"url": "https://example.org/hook"}
	cfg, err := ch.WebhookConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/hook", cfg.URL)
}
