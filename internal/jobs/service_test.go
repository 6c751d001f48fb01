package jobs

import (
	"context"
	"testing"

	"github.com/openduty/console/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Submit(t *testing.T) {
	repo := newMemoryRepository()
	service := NewService(repo)

	job, err := service.Submit(context.Background(), SubmitInput{
		Kind: domain.JobKindRunbookStep,
		Payload: domain.JobPayload{
			IncidentID: "inc-1",
			ActionType: domain.StepActionNotify,
			Target:     "oncall",
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, domain.JobStatusPending, job.Status)
	assert.Nil(t, job.ClaimedAt)
}

func TestService_Submit_Validation(t *testing.T) {
	valid := SubmitInput{
		Kind: domain.JobKindRunbookStep,
		Payload: domain.JobPayload{
			IncidentID: "inc-1",
			ActionType: domain.StepActionHTTP,
			Target:     "https://example.org/hook",
		},
	}

	tests := []struct {
		name    string
		mutate  func(*SubmitInput)
		wantErr error
	}{
		{"unknown kind", func(in *SubmitInput) { in.Kind = "CRON" }, ErrInvalidJobKind},
		{"unknown action type", func(in *SubmitInput) { in.Payload.ActionType = "teleport" }, ErrInvalidPayload},
		{"missing incident id", func(in *SubmitInput) { in.Payload.IncidentID = "" }, ErrInvalidPayload},
		{"missing target", func(in *SubmitInput) { in.Payload.Target = "" }, ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(newMemoryRepository())
			input := valid
			tt.mutate(&input)

			_, err := service.Submit(context.Background(), input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
