package workers

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/plateadmin/plateadmin/internal/inventory"
	"github.com/plateadmin/plateadmin/internal/models"
	"github.com/plateadmin/plateadmin/internal/tasks"
)

// StartInventoryScheduler checks every minute whether the configured
// inventory schedule is due, until ctx is cancelled
func StartInventoryScheduler(ctx context.Context, client tasks.Enqueuer, db *gorm.DB, logger zerolog.Logger) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	// Run immediately on startup, then every minute
	checkAndEnqueueInventoryRefresh(client, db, logger, time.Now())

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			checkAndEnqueueInventoryRefresh(client, db, logger, now)
		}
	}
}

// checkAndEnqueueInventoryRefresh enqueues a refresh when the schedule is due
// and reports whether it did
func checkAndEnqueueInventoryRefresh(client tasks.Enqueuer, db *gorm.DB, logger zerolog.Logger, now time.Time) bool {
	var config models.Config
	if err := db.First(&config).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Debug().Msg("No config found - skipping inventory check")
			return false
		}
		logger.Error().Err(err).Msg("Failed to query config for inventory schedule")
		return false
	}

	if config.InventorySchedule == "" {
		logger.Debug().Msg("No inventory schedule configured")
		return false
	}

	if config.NextInventoryRefreshAt != nil && config.NextInventoryRefreshAt.After(now) {
		logger.Debug().
			Time("next_inventory_refresh_at", *config.NextInventoryRefreshAt).
			Msg("Inventory refresh not due yet")
		return false
	}

	next, err := inventory.NextRefresh(config.InventorySchedule, now)
	if err != nil {
		logger.Error().Err(err).Str("schedule", config.InventorySchedule).Msg("Invalid inventory schedule")
		return false
	}

	task, err := tasks.NewInventoryRefreshTask("")
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create inventory refresh task")
		return false
	}

	if _, err := client.Enqueue(task, asynq.Timeout(10*time.Minute)); err != nil {
		logger.Error().Err(err).Msg("Failed to enqueue inventory refresh task")
		return false
	}

	// Advance immediately so the next tick does not enqueue again
	if err := db.Model(&config).Update("next_inventory_refresh_at", next).Error; err != nil {
		logger.Error().Err(err).Str("config_id", config.ID).Msg("Failed to update next_inventory_refresh_at")
	} else {
		logger.Info().
			Str("config_id", config.ID).
			Time("next_inventory_refresh_at", *next).
			Msg("Inventory refresh enqueued")
	}

	return true
}
