package email

import (
	"context"
	"testing"

	"github.com/openduty/console/internal/domain"
	"github.com/openduty/console/internal/notifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emailChannel(config map[string]string) domain.NotificationChannel {
	return domain.NotificationChannel{
		ID:      "ch-1",
		Type:    domain.ChannelTypeEmail,
		Name:    "oncall-mail",
		Config:  config,
		Enabled: true,
	}
}

func TestSender_TypeAndTag(t *testing.T) {
	sender := NewSender()
	assert.Equal(t, domain.ChannelTypeEmail, sender.Type())
	assert.Equal(t, "Email sent", sender.SuccessTag())
}

func TestSender_Send_MissingConfigFails(t *testing.T) {
	sender := NewSender()

	err := sender.Send(context.Background(), emailChannel(map[string]string{}), notifications.Message{})
	require.Error(t, err)
	// A misconfigured email channel is a real failure, not a silent skip.
	assert.NotErrorIs(t, err, notifications.ErrSkipChannel)
}

func TestSender_Send_NoRecipient(t *testing.T) {
	sender := NewSender()
	channel := emailChannel(map[string]string{
		"host": "mail.example.org",
		"port": "587",
		"from": "console@example.org",
	})

	err := sender.Send(context.Background(), channel, notifications.Message{Target: "oncall"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recipient")
}

func TestSender_Send_InvalidPort(t *testing.T) {
	sender := NewSender()
	channel := emailChannel(map[string]string{
		"host":             "mail.example.org",
		"port":             "smtp",
		"from":             "console@example.org",
		"defaultRecipient": "oncall@example.org",
	})

	err := sender.Send(context.Background(), channel, notifications.Message{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid smtp port")
}

func TestSender_BuildMessage(t *testing.T) {
	sender := NewSender()

	msg := string(sender.buildMessage("console@example.org", "oncall@example.org", "Runbook Action: API outage", "body line"))

	assert.Contains(t, msg, "From: console@example.org\r\n")
	assert.Contains(t, msg, "To: oncall@example.org\r\n")
	assert.Contains(t, msg, "Subject: Runbook Action: API outage\r\n")
	assert.Contains(t, msg, "\r\n\r\nbody line")
}

func TestExtractEmail(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"console@example.org", "console@example.org"},
		{"Console <console@example.org>", "console@example.org"},
		{"Broken <console@example.org", "Broken <console@example.org"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractEmail(tt.address))
	}
}
