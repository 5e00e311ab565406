package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/plateadmin/plateadmin/internal/inventory"
	"github.com/plateadmin/plateadmin/internal/models"
	"github.com/plateadmin/plateadmin/internal/tasks"
)

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	ID                     string     `json:"id"`
	InventorySchedule      string     `json:"inventory_schedule"`
	LowStockThreshold      int        `json:"low_stock_threshold"`
	LastInventoryRefreshAt *time.Time `json:"last_inventory_refresh_at"`
	NextInventoryRefreshAt *time.Time `json:"next_inventory_refresh_at"`
	CreatedAt              time.Time  `json:"created_at"`
}

// UpdateConfigRequest represents the request to update configuration
type UpdateConfigRequest struct {
	InventorySchedule *string `json:"inventorySchedule"` // empty string clears the schedule
	LowStockThreshold *int    `json:"lowStockThreshold"`
}

func newConfigResponse(config *models.Config) ConfigResponse {
	return ConfigResponse{
		ID:                     config.ID,
		InventorySchedule:      config.InventorySchedule,
		LowStockThreshold:      config.LowStockThreshold,
		LastInventoryRefreshAt: config.LastInventoryRefreshAt,
		NextInventoryRefreshAt: config.NextInventoryRefreshAt,
		CreatedAt:              config.CreatedAt,
	}
}

// loadConfig fetches the config singleton, writing the error response itself
func (s *Server) loadConfig(c *gin.Context) (*models.Config, bool) {
	var config models.Config
	if err := s.db.First(&config).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Configuration not found"})
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to get config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}
	return &config, true
}

// @Router /api/config [get]
func (s *Server) getConfig(c *gin.Context) {
	config, ok := s.loadConfig(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, newConfigResponse(config))
}

// @Router /api/config [patch]
func (s *Server) updateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	config, ok := s.loadConfig(c)
	if !ok {
		return
	}

	thresholdChanged := false
	if req.LowStockThreshold != nil {
		if *req.LowStockThreshold < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "low_stock_threshold must be at least 1"})
			return
		}
		thresholdChanged = *req.LowStockThreshold != config.LowStockThreshold
		config.LowStockThreshold = *req.LowStockThreshold
	}

	if req.InventorySchedule != nil {
		schedule := strings.TrimSpace(*req.InventorySchedule)
		next, err := inventory.NextRefresh(schedule, time.Now())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid inventory schedule", "details": err.Error()})
			return
		}
		config.InventorySchedule = schedule
		config.NextInventoryRefreshAt = next
	}

	if err := s.db.Save(config).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update configuration"})
		return
	}

	s.logger.Info().Str("config_id", config.ID).Msg("Configuration updated")

	// Statuses depend on the threshold, so recompute them in the background
	if thresholdChanged {
		if _, err := s.enqueueInventoryRefresh(GetSession(c).UserID); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to enqueue inventory refresh after threshold change")
		}
	}

	c.JSON(http.StatusOK, newConfigResponse(config))
}

func (s *Server) enqueueInventoryRefresh(requestedBy string) (*asynq.TaskInfo, error) {
	task, err := tasks.NewInventoryRefreshTask(requestedBy)
	if err != nil {
		return nil, err
	}
	return s.tasks.Enqueue(task, asynq.Timeout(10*time.Minute))
}

// @Router /api/inventory/refresh [post]
func (s *Server) refreshInventory(c *gin.Context) {
	info, err := s.enqueueInventoryRefresh(GetSession(c).UserID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to enqueue inventory refresh")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start inventory refresh"})
		return
	}

	s.logger.Info().Str("task_id", info.ID).Msg("Inventory refresh enqueued")

	c.JSON(http.StatusAccepted, gin.H{"task_id": info.ID, "message": "Inventory refresh started"})
}
