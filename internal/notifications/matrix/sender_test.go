package matrix

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openduty/console/internal/domain"
	"github.com/openduty/console/internal/notifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSender_Type(t *testing.T) {
	sender := NewSender(Config{})
	assert.Equal(t, domain.ChannelTypeMatrix, sender.Type())
	assert.Equal(t, "Matrix sent", sender.SuccessTag())
}

func TestSender_Send_PostsRoomMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		// Room id must be path-escaped in the endpoint
		assert.Equal(t, "/_matrix/client/v3/rooms/%21ops:example.org/send/m.room.message", r.URL.EscapedPath())
		assert.Equal(t, "Bearer syt_token", r.Header.Get("Authorization"))

		var event messageEvent
		err := json.NewDecoder(r.Body).Decode(&event)
		require.NoError(t, err)
		assert.Equal(t, "m.text", event.MsgType)
		assert.Equal(t, "Database is on fire", event.Body)

		_, _ = w.Write([]byte(`{"event_id":"$abc"}`))
	}))
	defer server.Close()

	sender := NewSender(Config{})
	err := sender.Send(context.Background(), domain.NotificationChannel{
		Name: "ops-room",
		Config: map[string]string{
			"homeServer":  server.URL,
			"accessToken": "syt_token",
			"roomId":      "!ops:example.org",
		},
	}, notifications.Message{Body: "Database is on fire"})

	assert.NoError(t, err)
}

func TestSender_Send_MissingConfigIsFailure(t *testing.T) {
	sender := NewSender(Config{})
	err := sender.Send(context.Background(), domain.NotificationChannel{
		Name:   "ops-room",
		Config: map[string]string{"homeServer": "https://matrix.example.org"},
	}, notifications.Message{Body: "ignored"})

	require.Error(t, err)
	// Unlike mattermost/webhook, a misconfigured matrix channel is a real
	// failure, not a silent skip.
	assert.NotErrorIs(t, err, notifications.ErrSkipChannel)
}

func TestSender_Send_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errcode":"M_FORBIDDEN"}`, http.StatusForbidden)
	}))
	defer server.Close()

	sender := NewSender(Config{})
	err := sender.Send(context.Background(), domain.NotificationChannel{
		Name: "ops-room",
		Config: map[string]string{
			"homeServer":  server.URL,
			"accessToken": "bad_token",
			"roomId":      "!ops:example.org",
		},
	}, notifications.Message{Body: "ignored"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
