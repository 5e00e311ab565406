package tasks

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordResetMailTask(t *testing.T) {
	task, err := NewPasswordResetMailTask("01HUSER", "jane@example.com", "http://localhost:8080/reset-password?token=abc")
	require.NoError(t, err)
	assert.Equal(t, TypePasswordResetMail, task.Type())

	payload, err := ParsePasswordResetPayload(task)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", payload.Email)
	assert.Equal(t, "http://localhost:8080/reset-password?token=abc", payload.ResetURL)
}

func TestInventoryRefreshTask(t *testing.T) {
	task, err := NewInventoryRefreshTask("")
	require.NoError(t, err)
	assert.Equal(t, TypeInventoryRefresh, task.Type())

	payload, err := ParseInventoryRefreshPayload(task)
	require.NoError(t, err)
	assert.Empty(t, payload.RequestedBy)
}

func TestParse_BadPayload(t *testing.T) {
	_, err := ParsePasswordResetPayload(asynq.NewTask(TypePasswordResetMail, []byte("{")))
	assert.Error(t, err)

	_, err = ParseInventoryRefreshPayload(asynq.NewTask(TypeInventoryRefresh, []byte("not json")))
	assert.Error(t, err)
}
