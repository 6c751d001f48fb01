//go:build integration

package integration

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyJobDeliversEmailEndToEnd(t *testing.T) {
	require.NoError(t, mailpitClient.DeleteAllMessages())

	createChannel(t, testClient, "email", uniqueName("oncall-mail"), map[string]string{
		"host":             mailpitContainer.SMTPHost,
		"port":             strconv.Itoa(mailpitContainer.SMTPPort),
		"from":             "console@example.org",
		"defaultRecipient": "oncall@example.org",
	}, true)

	incident := declareIncident(t, testClient, "Email e2e incident", "SEV1")
	job := submitJob(t, testClient, incident.ID, "notify", "oncall")

	waitForJobStatus(t, testClient, job.ID, "COMPLETED")

	messages, err := mailpitClient.WaitForMessages(1, 10*time.Second)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	msg := messages[0]
	assert.Equal(t, "console@example.org", msg.From.Address)
	require.Len(t, msg.To, 1)
	assert.Equal(t, "oncall@example.org", msg.To[0].Address)
	assert.Equal(t, "Runbook Action: Email e2e incident", msg.Subject)

	full, err := mailpitClient.GetMessageByID(msg.ID)
	require.NoError(t, err)
	assert.Contains(t, full.Text, "[Runbook: Test Runbook] Step Action: oncall")
	assert.Contains(t, full.Text, "Email e2e incident (SEV1)")

	// The broadcast outcome lands in the ledger with the success tag
	events := getTimeline(t, testClient, incident.ID)
	last := events[len(events)-1]
	assert.Contains(t, last.Content, "[Automation] Notification broadcast: Email sent")
}

func TestNotifyJobUsesEmailTargetWhenAddressLike(t *testing.T) {
	require.NoError(t, mailpitClient.DeleteAllMessages())

	createChannel(t, testClient, "email", uniqueName("direct-mail"), map[string]string{
		"host": mailpitContainer.SMTPHost,
		"port": strconv.Itoa(mailpitContainer.SMTPPort),
		"from": "console@example.org",
	}, true)

	incident := declareIncident(t, testClient, "Direct recipient incident", "SEV2")
	job := submitJob(t, testClient, incident.ID, "notify", "dba@example.org")

	waitForJobStatus(t, testClient, job.ID, "COMPLETED")

	messages, err := mailpitClient.WaitForMessages(1, 10*time.Second)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Len(t, messages[0].To, 1)
	assert.Equal(t, "dba@example.org", messages[0].To[0].Address)
}

func TestEmailChannelMissingConfigFailsWithoutAbortingBroadcast(t *testing.T) {
	require.NoError(t, mailpitClient.DeleteAllMessages())

	// An email channel without SMTP settings fails; a complete one still
	// delivers in the same broadcast.
	brokenName := uniqueName("broken-mail")
	createChannel(t, testClient, "email", brokenName, map[string]string{}, true)
	createChannel(t, testClient, "email", uniqueName("working-mail"), map[string]string{
		"host":             mailpitContainer.SMTPHost,
		"port":             strconv.Itoa(mailpitContainer.SMTPPort),
		"from":             "console@example.org",
		"defaultRecipient": "oncall@example.org",
	}, true)

	incident := declareIncident(t, testClient, "Partial email broadcast", "SEV3")
	job := submitJob(t, testClient, incident.ID, "notify", "oncall")

	waitForJobStatus(t, testClient, job.ID, "COMPLETED")

	messages, err := mailpitClient.WaitForMessages(1, 10*time.Second)
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	events := getTimeline(t, testClient, incident.ID)
	last := events[len(events)-1]
	assert.Contains(t, last.Content, fmt.Sprintf("%s failed", brokenName))
	assert.Contains(t, last.Content, "Email sent")
}
