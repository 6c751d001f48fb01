package mattermost

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openduty/console/internal/domain"
	"github.com/openduty/console/internal/notifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSender_Defaults(t *testing.T) {
	sender := NewSender(Config{})
	assert.NotNil(t, sender.httpClient)
	assert.Equal(t, defaultTimeout, sender.httpClient.Timeout)
}

func TestNewSender_CustomTimeout(t *testing.T) {
	sender := NewSender(Config{Timeout: 30 * time.Second})
	assert.Equal(t, 30*time.Second, sender.httpClient.Timeout)
}

func TestSender_Type(t *testing.T) {
	sender := NewSender(Config{})
	assert.Equal(t, domain.ChannelTypeMattermost, sender.Type())
	assert.Equal(t, "Mattermost sent", sender.SuccessTag())
}

func TestSender_Send_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload webhookPayload
		err := json.NewDecoder(r.Body).Decode(&payload)
		require.NoError(t, err)
		assert.Equal(t, "Test message", payload.Text)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewSender(Config{})
	err := sender.Send(context.Background(), domain.NotificationChannel{
		Name:   "mm-ops",
		Type:   domain.ChannelTypeMattermost,
		Config: map[string]string{"webhookUrl": server.URL},
	}, notifications.Message{Body: "Test message"})

	assert.NoError(t, err)
}

func TestSender_Send_MissingWebhookURLSkipsChannel(t *testing.T) {
	sender := NewSender(Config{})
	err := sender.Send(context.Background(), domain.NotificationChannel{
		Name:   "mm-unconfigured",
		Type:   domain.ChannelTypeMattermost,
		Config: map[string]string{},
	}, notifications.Message{Body: "ignored"})

	assert.ErrorIs(t, err, notifications.ErrSkipChannel)
}

func TestSender_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	sender := NewSender(Config{})
	err := sender.Send(context.Background(), domain.NotificationChannel{
		Name:   "mm-ops",
		Config: map[string]string{"webhookUrl": server.URL},
	}, notifications.Message{Body: "Test message"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, notifications.ErrSkipChannel)
	assert.Contains(t, err.Error(), "500")
}
