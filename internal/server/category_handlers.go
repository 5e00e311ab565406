package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plateadmin/plateadmin/internal/models"
	"github.com/plateadmin/plateadmin/internal/table"
)

var errDuplicateCategory = errors.New("a category with this name already exists")

// CategoryRequest creates or updates a category
type CategoryRequest struct {
	Name        string `json:"name" form:"name" binding:"required"`
	Description string `json:"description" form:"description"`
	Status      string `json:"status" form:"status" binding:"omitempty,oneof=active inactive"`
}

func categorySearchFields(c models.Category) []string {
	return []string{c.Name, c.Description, c.Status}
}

// countProducts fills ProductCount for each category
func (s *Server) countProducts(categories []models.Category) error {
	var rows []struct {
		CategoryID string
		Count      int64
	}
	if err := s.db.Model(&models.Product{}).
		Select("category_id, count(*) as count").
		Where("category_id IS NOT NULL").
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return fmt.Errorf("failed to count products per category: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}

	for i := range categories {
		categories[i].ProductCount = counts[categories[i].ID]
	}
	return nil
}

// loadCategories returns categories with product counts, filtered by query
func (s *Server) loadCategories(query string) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	if err := s.countProducts(categories); err != nil {
		return nil, err
	}

	return table.Filter(categories, query, categorySearchFields), nil
}

// saveCategory writes category from req, keeping names unique
func (s *Server) saveCategory(category *models.Category, req CategoryRequest) error {
	name := strings.TrimSpace(req.Name)

	var duplicates int64
	if err := s.db.Model(&models.Category{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, category.ID).
		Count(&duplicates).Error; err != nil {
		return fmt.Errorf("failed to check category name: %w", err)
	}
	if duplicates > 0 {
		return errDuplicateCategory
	}

	category.Name = name
	category.Description = req.Description
	category.Status = req.Status
	if category.Status == "" {
		category.Status = models.StatusActive
	}

	if err := s.db.Save(category).Error; err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

// @Router /api/categories [get]
func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.loadCategories(c.Query("q"))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list categories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if status := c.Query("status"); status != "" {
		categories = withStatus(categories, status, func(c models.Category) string { return c.Status })
	}

	c.JSON(http.StatusOK, categories)
}

// findCategory loads a category and its product count, writing the error response itself
func (s *Server) findCategory(c *gin.Context) (*models.Category, bool) {
	var category models.Category
	if err := models.FindByID(s.db, c.Param("id"), &category); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to get category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}

	if err := s.db.Model(&models.Product{}).Where("category_id = ?", category.ID).
		Count(&category.ProductCount).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count category products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}

	return &category, true
}

// @Router /api/categories/{id} [get]
func (s *Server) getCategory(c *gin.Context) {
	category, ok := s.findCategory(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, category)
}

// @Router /api/categories [post]
func (s *Server) createCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	var category models.Category
	if err := s.saveCategory(&category, req); err != nil {
		if errors.Is(err, errDuplicateCategory) {
			c.JSON(http.StatusConflict, gin.H{"error": "A category with this name already exists"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to create category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	s.logger.Info().Str("category_id", category.ID).Str("name", category.Name).Msg("Category created")

	c.JSON(http.StatusCreated, category)
}

// @Router /api/categories/{id} [put]
func (s *Server) updateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	category, ok := s.findCategory(c)
	if !ok {
		return
	}

	if err := s.saveCategory(category, req); err != nil {
		if errors.Is(err, errDuplicateCategory) {
			c.JSON(http.StatusConflict, gin.H{"error": "A category with this name already exists"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to update category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	s.logger.Info().Str("category_id", category.ID).Msg("Category updated")

	c.JSON(http.StatusOK, category)
}

// removeCategory deletes category after detaching its products
func (s *Server) removeCategory(category *models.Category) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach products: %w", err)
		}
		return tx.Delete(category).Error
	})
}

// @Router /api/categories/{id} [delete]
// Products in the category are kept and become uncategorised.
func (s *Server) deleteCategory(c *gin.Context) {
	category, ok := s.findCategory(c)
	if !ok {
		return
	}

	if err := s.removeCategory(category); err != nil {
		s.logger.Error().Err(err).Str("category_id", category.ID).Msg("Failed to delete category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	s.logger.Info().
		Str("category_id", category.ID).
		Int64("detached_products", category.ProductCount).
		Msg("Category deleted")

	c.Status(http.StatusNoContent)
}
