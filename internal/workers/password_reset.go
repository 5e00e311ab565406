package workers

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/plateadmin/plateadmin/internal/tasks"
)

// HandlePasswordResetMail delivers a reset link. There is no mail transport
// yet, so delivery is a structured log line an operator can forward.
func HandlePasswordResetMail(ctx context.Context, t *asynq.Task, logger zerolog.Logger) error {
	payload, err := tasks.ParsePasswordResetPayload(t)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	if payload.Email == "" || payload.ResetURL == "" {
		// Retrying will not fix a malformed payload
		return fmt.Errorf("incomplete password reset payload for user %s: %w", payload.UserID, asynq.SkipRetry)
	}

	logger.Info().
		Str("user_id", payload.UserID).
		Str("email", payload.Email).
		Str("reset_url", payload.ResetURL).
		Msg("Password reset link issued")

	return nil
}
