package server

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plateadmin/plateadmin/internal/access"
	"github.com/plateadmin/plateadmin/internal/inventory"
	"github.com/plateadmin/plateadmin/internal/models"
	"github.com/plateadmin/plateadmin/internal/orders"
)

const (
	recentOrdersLimit    = 5
	popularProductsLimit = 4
)

// DashboardResponse is the landing page summary
type DashboardResponse struct {
	Orders               orders.Stats           `json:"orders"`
	Products             inventory.ProductStats `json:"products"`
	TotalCustomers       int64                  `json:"total_customers"`
	CustomerSatisfaction float64                `json:"customer_satisfaction"`
	RecentOrders         []models.Order         `json:"recent_orders"`
	PopularProducts      []models.Product       `json:"popular_products"`
}

// NavLink is a sidebar entry
type NavLink struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

// buildDashboard gathers the dashboard summary
func (s *Server) buildDashboard() (*DashboardResponse, error) {
	var allOrders []models.Order
	if err := s.db.Order("order_date DESC, number DESC").Find(&allOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	var products []models.Product
	if err := s.db.Preload("Category").Order("orders DESC, name ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	var customers []models.Customer
	if err := s.db.Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}

	var ratingSum float64
	for _, customer := range customers {
		ratingSum += customer.Rating
	}
	var satisfaction float64
	if len(customers) > 0 {
		satisfaction = math.Round(ratingSum/float64(len(customers))*10) / 10
	}

	return &DashboardResponse{
		Orders:               orders.Summarize(allOrders),
		Products:             inventory.Stats(products, inventory.Threshold(s.db)),
		TotalCustomers:       int64(len(customers)),
		CustomerSatisfaction: satisfaction,
		RecentOrders:         allOrders[:min(recentOrdersLimit, len(allOrders))],
		PopularProducts:      products[:min(popularProductsLimit, len(products))],
	}, nil
}

// @Router /api/dashboard [get]
func (s *Server) getDashboard(c *gin.Context) {
	dashboard, err := s.buildDashboard()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to build dashboard")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// navLinks lists the sidebar entries the session may open
func navLinks(c *gin.Context) []NavLink {
	routes := access.NavLinks(GetSession(c))
	links := make([]NavLink, len(routes))
	for i, route := range routes {
		links[i] = NavLink{Path: route.Path, Title: route.Title}
	}
	return links
}

// @Router /api/nav [get]
func (s *Server) getNav(c *gin.Context) {
	session := GetSession(c)
	c.JSON(http.StatusOK, gin.H{
		"display_name": session.DisplayName,
		"role":         session.Role,
		"links":        navLinks(c),
	})
}
