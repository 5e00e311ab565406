package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plateadmin/plateadmin/internal/models"
	"github.com/plateadmin/plateadmin/internal/orders"
	"github.com/plateadmin/plateadmin/internal/table"
)

// OrderActionRequest carries the optional rejection reason
type OrderActionRequest struct {
	Reason string `json:"reason" form:"reason"`
}

// OrderListResponse is the orders page payload
type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Stats  orders.Stats   `json:"stats"`
}

// withStatus keeps rows whose status equals status exactly
func withStatus[T any](rows []T, status string, statusOf func(T) string) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if statusOf(row) == status {
			out = append(out, row)
		}
	}
	return out
}

// loadOrders returns all orders newest first, and the subset matching query and status
func (s *Server) loadOrders(query, status string) (all []models.Order, filtered []models.Order, err error) {
	if err := s.db.Order("order_date DESC, number DESC").Find(&all).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to list orders: %w", err)
	}

	filtered = table.Filter(all, query, orders.SearchFields)
	if status != "" {
		filtered = withStatus(filtered, status, func(o models.Order) string { return o.Status })
	}

	return all, filtered, nil
}

// applyOrderAction loads an order, moves it through action and saves it
func (s *Server) applyOrderAction(id, action, reason string) (*models.Order, error) {
	var order models.Order
	if err := models.FindByID(s.db, id, &order); err != nil {
		return nil, err
	}

	previous := order.Status
	if err := orders.Apply(&order, action, reason); err != nil {
		return nil, err
	}

	if err := s.saveTransition(&order, previous); err != nil {
		return nil, err
	}
	return &order, nil
}

// saveTransition writes the new status only while the stored status is still
// previous. A concurrent action that got there first makes this one invalid.
func (s *Server) saveTransition(order *models.Order, previous string) error {
	result := s.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, previous).
		Updates(map[string]any{
			"status":           order.Status,
			"rejection_reason": order.RejectionReason,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: order is no longer %s", orders.ErrInvalidTransition, previous)
	}
	return nil
}

// @Router /api/orders [get]
func (s *Server) listOrders(c *gin.Context) {
	all, list, err := s.loadOrders(c.Query("q"), c.Query("status"))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, OrderListResponse{
		Orders: list,
		Stats:  orders.Summarize(all),
	})
}

// @Router /api/orders/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	var order models.Order
	if err := models.FindByID(s.db, c.Param("id"), &order); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to get order")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// @Router /api/orders/{id}/{action} [post]
func (s *Server) transitionOrder(c *gin.Context) {
	var req OrderActionRequest
	// The body is optional; only reject reads it
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	order, err := s.applyOrderAction(c.Param("id"), c.Param("action"), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, orders.ErrUnknownAction):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, orders.ErrReasonRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, orders.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			s.logger.Error().Err(err).Msg("Failed to update order")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		}
		return
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("number", order.Number).
		Str("action", c.Param("action")).
		Str("status", order.Status).
		Str("by", GetSession(c).UserID).
		Msg("Order updated")

	c.JSON(http.StatusOK, order)
}
