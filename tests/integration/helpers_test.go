//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/openduty/console/internal/testutil"
	"github.com/stretchr/testify/require"
)

type incidentData struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Severity        string  `json:"severity"`
	Status          string  `json:"status"`
	Commander       string  `json:"commander"`
	TeamID          *string `json:"team_id"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
	DurationSeconds int64   `json:"duration_seconds"`
}

type timelineEventData struct {
	ID         string `json:"id"`
	IncidentID string `json:"incident_id"`
	Kind       string `json:"kind"`
	Content    string `json:"content"`
	Author     string `json:"author"`
	CreatedAt  string `json:"created_at"`
}

type jobData struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Status  string `json:"status"`
	Payload struct {
		IncidentID  string `json:"incidentId"`
		StepID      string `json:"stepId"`
		RunbookName string `json:"runbookName"`
		ActionType  string `json:"actionType"`
		Target      string `json:"target"`
	} `json:"payload"`
	ClaimedAt *string `json:"claimed_at"`
}

type channelData struct {
	ID      string            `json:"id"`
	Type    string            `json:"type"`
	Name    string            `json:"name"`
	Config  map[string]string `json:"config"`
	Enabled bool              `json:"enabled"`
}

// declareIncident declares an incident and returns its API representation.
func declareIncident(t *testing.T, client *testutil.Client, title, severity string) incidentData {
	t.Helper()

	resp, err := client.POST("/api/v1/incidents", map[string]interface{}{
		"title":     title,
		"severity":  severity,
		"commander": "alice",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, testutil.ReadBody(t, resp))

	var result struct {
		Data incidentData `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}

// getTimeline fetches an incident's timeline, oldest first.
func getTimeline(t *testing.T, client *testutil.Client, incidentID string) []timelineEventData {
	t.Helper()

	resp, err := client.GET("/api/v1/incidents/" + incidentID + "/timeline")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data []timelineEventData `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}

// submitJob enqueues a RUNBOOK_STEP job and returns the created record.
func submitJob(t *testing.T, client *testutil.Client, incidentID, actionType, target string) jobData {
	t.Helper()

	resp, err := client.POST("/api/v1/jobs", map[string]interface{}{
		"kind": "RUNBOOK_STEP",
		"payload": map[string]string{
			"incidentId":  incidentID,
			"stepId":      "step-1",
			"runbookName": "Test Runbook",
			"actionType":  actionType,
			"target":      target,
		},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, testutil.ReadBody(t, resp))

	var result struct {
		Data jobData `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	require.Equal(t, "PENDING", result.Data.Status)
	return result.Data
}

// waitForJobStatus polls until the job reaches the wanted terminal status.
func waitForJobStatus(t *testing.T, client *testutil.Client, jobID, want string) jobData {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	var last jobData
	for time.Now().Before(deadline) {
		resp, err := client.GET("/api/v1/jobs/" + jobID)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Data jobData `json:"data"`
		}
		testutil.DecodeJSON(t, resp, &result)
		last = result.Data

		if last.Status == want {
			return last
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("job %s did not reach status %s, last status %s", jobID, want, last.Status)
	return last
}

// createChannel creates a notification channel and registers its cleanup.
func createChannel(t *testing.T, client *testutil.Client, chType, name string, config map[string]string, enabled bool) channelData {
	t.Helper()

	resp, err := client.POST("/api/v1/channels", map[string]interface{}{
		"type":    chType,
		"name":    name,
		"config":  config,
		"enabled": enabled,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, testutil.ReadBody(t, resp))

	var result struct {
		Data channelData `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)

	t.Cleanup(func() {
		resp, err := client.DELETE("/api/v1/channels/" + result.Data.ID)
		if err == nil {
			_ = resp.Body.Close()
		}
	})

	return result.Data
}

// timelineContents extracts just the content strings for assertions.
func timelineContents(events []timelineEventData) []string {
	contents := make([]string, 0, len(events))
	for _, e := range events {
		contents = append(contents, e.Content)
	}
	return contents
}

// uniqueName appends a nanosecond suffix to avoid collisions between tests
// sharing one database.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
