//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/openduty/console/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelCRUD(t *testing.T) {
	name := uniqueName("matrix-ops")
	channel := createChannel(t, testClient, "matrix", name, map[string]string{
		"homeServer":  "https://matrix.example.org",
		"accessToken": "syt_secret",
		"roomId":      "!ops:example.org",
	}, false)

	assert.NotEmpty(t, channel.ID)
	assert.Equal(t, "matrix", channel.Type)
	assert.False(t, channel.Enabled)

	// Read back
	resp, err := testClient.GET("/api/v1/channels/" + channel.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data channelData `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, name, result.Data.Name)
	assert.Equal(t, "!ops:example.org", result.Data.Config["roomId"])

	// Partial update: rename and enable, config untouched
	newName := uniqueName("matrix-ops-renamed")
	enabled := true
	resp, err = testClient.PATCH("/api/v1/channels/"+channel.ID, map[string]interface{}{
		"name":    newName,
		"enabled": enabled,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, newName, result.Data.Name)
	assert.True(t, result.Data.Enabled)
	assert.Equal(t, "!ops:example.org", result.Data.Config["roomId"])

	// Disable again so later notify tests don't pick this channel up
	disabled := false
	resp, err = testClient.PATCH("/api/v1/channels/"+channel.ID, map[string]interface{}{
		"enabled": disabled,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// Delete
	resp, err = testClient.DELETE("/api/v1/channels/" + channel.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = testClient.GET("/api/v1/channels/" + channel.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCreateChannelRejectsUnknownType(t *testing.T) {
	resp, err := testClient.POST("/api/v1/channels", map[string]interface{}{
		"type": "carrier-pigeon",
		"name": "pigeon-net",
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
