package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plateadmin/plateadmin/internal/inventory"
	"github.com/plateadmin/plateadmin/internal/models"
	"github.com/plateadmin/plateadmin/internal/table"
)

var (
	errCategoryNotFound = errors.New("category not found")
	errDuplicateSKU     = errors.New("a product with this SKU already exists")
)

// ProductRequest is the add/edit product form
type ProductRequest struct {
	Name        string  `json:"name" form:"name" binding:"required"`
	SKU         string  `json:"sku" form:"sku" binding:"required,sku"`
	CategoryID  string  `json:"category_id" form:"category_id"`
	Price       int64   `json:"price" form:"price" binding:"required,gt=0"`
	Stock       int     `json:"stock" form:"stock" binding:"gte=0"`
	Status      string  `json:"status" form:"status" binding:"omitempty,oneof=active low-stock out-of-stock inactive"`
	Rating      float64 `json:"rating" form:"rating" binding:"gte=0,lte=5"`
	Orders      int     `json:"orders" form:"orders" binding:"gte=0"`
	Material    string  `json:"material" form:"material"`
	Size        string  `json:"size" form:"size"`
	Description string  `json:"description" form:"description"`
}

// ProductListResponse is a page of products with catalog statistics
type ProductListResponse struct {
	Products []models.Product      `json:"products"`
	Stats    inventory.ProductStats `json:"stats"`
}

// productSearchFields are the product fields matched by search
func productSearchFields(p models.Product) []string {
	fields := []string{p.Name, p.SKU, p.Status, p.Material}
	if p.Category != nil {
		fields = append(fields, p.Category.Name)
	}
	return fields
}

// productStatus derives the stored status. Only "inactive" is taken from the
// form; every other status follows the stock level.
func productStatus(requested string, stock, threshold int) string {
	if requested == models.ProductInactive {
		return models.ProductInactive
	}
	return inventory.StatusForStock(stock, threshold)
}

// loadProducts returns all products with categories, filtered by query and status
func (s *Server) loadProducts(query, status string) (all []models.Product, filtered []models.Product, err error) {
	if err := s.db.Preload("Category").Order("created_at ASC").Find(&all).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to list products: %w", err)
	}

	filtered = table.Filter(all, query, productSearchFields)
	if status != "" {
		filtered = withStatus(filtered, status, func(p models.Product) string { return p.Status })
	}

	return all, filtered, nil
}

// saveProduct validates references and writes product from req
func (s *Server) saveProduct(product *models.Product, req ProductRequest) error {
	req.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))

	var categoryID *string
	if id := strings.TrimSpace(req.CategoryID); id != "" {
		var category models.Category
		if err := models.FindByID(s.db, id, &category); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errCategoryNotFound
			}
			return fmt.Errorf("failed to find category: %w", err)
		}
		categoryID = &category.ID
	}

	var duplicates int64
	if err := s.db.Model(&models.Product{}).
		Where("sku = ? AND id <> ?", req.SKU, product.ID).
		Count(&duplicates).Error; err != nil {
		return fmt.Errorf("failed to check sku: %w", err)
	}
	if duplicates > 0 {
		return errDuplicateSKU
	}

	product.Name = strings.TrimSpace(req.Name)
	product.SKU = req.SKU
	product.CategoryID = categoryID
	product.Category = nil
	product.Price = req.Price
	product.Stock = req.Stock
	product.Status = productStatus(req.Status, req.Stock, inventory.Threshold(s.db))
	product.Rating = req.Rating
	product.Orders = req.Orders
	product.Material = req.Material
	product.Size = req.Size
	product.Description = req.Description

	if err := s.db.Save(product).Error; err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}

	return nil
}

// respondProductError maps saveProduct failures to responses
func (s *Server) respondProductError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errCategoryNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
	case errors.Is(err, errDuplicateSKU):
		c.JSON(http.StatusConflict, gin.H{"error": "A product with this SKU already exists"})
	default:
		s.logger.Error().Err(err).Msg("Failed to save product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save product"})
	}
}

// @Router /api/products [get]
func (s *Server) listProducts(c *gin.Context) {
	all, products, err := s.loadProducts(c.Query("q"), c.Query("status"))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, ProductListResponse{
		Products: products,
		Stats:    inventory.Stats(all, inventory.Threshold(s.db)),
	})
}

// @Router /api/products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	var product models.Product
	if err := models.FindByIDWithPreload(s.db, c.Param("id"), &product, "Category"); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to get product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// @Router /api/products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	var product models.Product
	if err := s.saveProduct(&product, req); err != nil {
		s.respondProductError(c, err)
		return
	}

	s.logger.Info().
		Str("product_id", product.ID).
		Str("sku", product.SKU).
		Str("created_by", GetSession(c).UserID).
		Msg("Product created")

	c.JSON(http.StatusCreated, product)
}

// @Router /api/products/{id} [put]
func (s *Server) updateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	var product models.Product
	if err := models.FindByID(s.db, c.Param("id"), &product); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to get product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := s.saveProduct(&product, req); err != nil {
		s.respondProductError(c, err)
		return
	}

	s.logger.Info().Str("product_id", product.ID).Msg("Product updated")

	c.JSON(http.StatusOK, product)
}

// removeProduct deletes the product with id, or returns gorm.ErrRecordNotFound
func (s *Server) removeProduct(id string) error {
	result := s.db.Where("id = ?", id).Delete(&models.Product{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// @Router /api/products/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.removeProduct(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to delete product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	s.logger.Info().
		Str("product_id", c.Param("id")).
		Str("deleted_by", GetSession(c).UserID).
		Msg("Product deleted")

	c.Status(http.StatusNoContent)
}
