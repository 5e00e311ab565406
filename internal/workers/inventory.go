package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/plateadmin/plateadmin/internal/inventory"
	"github.com/plateadmin/plateadmin/internal/models"
	"github.com/plateadmin/plateadmin/internal/tasks"
)

// HandleInventoryRefresh recomputes product statuses from stock levels
func HandleInventoryRefresh(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParseInventoryRefreshPayload(t)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	threshold := inventory.Threshold(db)

	changed, err := inventory.RefreshStatuses(db.WithContext(ctx), threshold)
	if err != nil {
		return fmt.Errorf("failed to refresh inventory: %w", err)
	}

	now := time.Now()
	if err := db.WithContext(ctx).Model(&models.Config{}).Where("1=1").
		Update("last_inventory_refresh_at", now).Error; err != nil {
		logger.Warn().Err(err).Msg("Failed to record inventory refresh time")
	}

	logger.Info().
		Str("requested_by", payload.RequestedBy).
		Int("low_stock_threshold", threshold).
		Int64("products_changed", changed).
		Msg("Inventory statuses refreshed")

	return nil
}
