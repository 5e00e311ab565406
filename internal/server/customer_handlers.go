package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plateadmin/plateadmin/internal/models"
	"github.com/plateadmin/plateadmin/internal/table"
)

func customerSearchFields(c models.Customer) []string {
	return []string{c.Name, c.Email, c.Phone, c.Location, c.LoyaltyTier}
}

// loadCustomers returns customers matching query, biggest spenders first
func (s *Server) loadCustomers(query, status string) ([]models.Customer, error) {
	var customers []models.Customer
	if err := s.db.Order("total_spent DESC, name ASC").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	customers = table.Filter(customers, query, customerSearchFields)
	if status != "" {
		customers = withStatus(customers, status, func(c models.Customer) string { return c.Status })
	}
	return customers, nil
}

// @Router /api/customers [get]
func (s *Server) listCustomers(c *gin.Context) {
	customers, err := s.loadCustomers(c.Query("q"), c.Query("status"))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list customers")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, customers)
}

// @Router /api/customers/{id} [get]
func (s *Server) getCustomer(c *gin.Context) {
	var customer models.Customer
	if err := models.FindByID(s.db, c.Param("id"), &customer); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to get customer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, customer)
}
