package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TypePasswordResetMail = "mail:password_reset"
	TypeInventoryRefresh  = "inventory:refresh"
)

// PasswordResetPayload carries what the mailer needs to send a reset link
type PasswordResetPayload struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	ResetURL string `json:"reset_url"`
}

// InventoryRefreshPayload identifies who or what asked for a refresh
type InventoryRefreshPayload struct {
	RequestedBy string `json:"requested_by,omitempty"` // user ID, empty for the scheduler
}

// NewPasswordResetMailTask creates a task to deliver a password reset link
func NewPasswordResetMailTask(userID, email, resetURL string) (*asynq.Task, error) {
	payload, err := json.Marshal(PasswordResetPayload{
		UserID:   userID,
		Email:    email,
		ResetURL: resetURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypePasswordResetMail, payload, asynq.MaxRetry(5)), nil
}

// NewInventoryRefreshTask creates a task to recompute product stock statuses
func NewInventoryRefreshTask(requestedBy string) (*asynq.Task, error) {
	payload, err := json.Marshal(InventoryRefreshPayload{
		RequestedBy: requestedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeInventoryRefresh, payload, asynq.MaxRetry(3)), nil
}

// ParsePasswordResetPayload parses a password reset task payload
func ParsePasswordResetPayload(task *asynq.Task) (PasswordResetPayload, error) {
	var payload PasswordResetPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}

// ParseInventoryRefreshPayload parses an inventory refresh task payload
func ParseInventoryRefreshPayload(task *asynq.Task) (InventoryRefreshPayload, error) {
	var payload InventoryRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}

// Enqueuer is the part of *asynq.Client the server and scheduler use
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
