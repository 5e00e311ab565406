package inventory

import (
	"fmt"
	"math"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/plateadmin/plateadmin/internal/models"
)

// DefaultLowStockThreshold applies when no config row exists yet
const DefaultLowStockThreshold = 10

// StatusForStock derives a product status from its stock level
func StatusForStock(stock, threshold int) string {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}

	switch {
	case stock <= 0:
		return models.ProductOutOfStock
	case stock < threshold:
		return models.ProductLowStock
	default:
		return models.ProductActive
	}
}

// ProductStats summarises the catalog for the products page
type ProductStats struct {
	Total      int     `json:"total_products"`
	OutOfStock int     `json:"out_of_stock"`
	LowStock   int     `json:"low_stock"`
	AvgRating  float64 `json:"avg_rating"`
}

// Stats computes catalog statistics; the average rating is rounded to one decimal
func Stats(products []models.Product, threshold int) ProductStats {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}

	stats := ProductStats{Total: len(products)}
	var ratingSum float64
	for _, p := range products {
		switch {
		case p.Stock <= 0:
			stats.OutOfStock++
		case p.Stock < threshold:
			stats.LowStock++
		}
		ratingSum += p.Rating
	}

	if len(products) > 0 {
		stats.AvgRating = math.Round(ratingSum/float64(len(products))*10) / 10
	}

	return stats
}

// Threshold loads the configured low-stock threshold
func Threshold(db *gorm.DB) int {
	var config models.Config
	if err := db.First(&config).Error; err != nil || config.LowStockThreshold <= 0 {
		return DefaultLowStockThreshold
	}
	return config.LowStockThreshold
}

// RefreshStatuses rewrites the status of every product that is not inactive
// from its stock level and returns how many rows changed
func RefreshStatuses(db *gorm.DB, threshold int) (int64, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}

	var changed int64
	err := db.Transaction(func(tx *gorm.DB) error {
		updates := []struct {
			status string
			where  string
			args   []any
		}{
			{models.ProductOutOfStock, "stock <= 0 AND status <> ?", []any{models.ProductOutOfStock}},
			{models.ProductLowStock, "stock > 0 AND stock < ? AND status <> ?", []any{threshold, models.ProductLowStock}},
			{models.ProductActive, "stock >= ? AND status <> ?", []any{threshold, models.ProductActive}},
		}

		for _, u := range updates {
			result := tx.Model(&models.Product{}).
				Where("status <> ?", models.ProductInactive).
				Where(u.where, u.args...).
				Update("status", u.status)
			if result.Error != nil {
				return fmt.Errorf("failed to mark products %s: %w", u.status, result.Error)
			}
			changed += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return changed, nil
}

// NextRefresh calculates the next run time from a standard 5-field cron expression
func NextRefresh(cronExpr string, from time.Time) (*time.Time, error) {
	if cronExpr == "" {
		return nil, nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid inventory schedule %q: %w", cronExpr, err)
	}

	next := schedule.Next(from)
	return &next, nil
}
