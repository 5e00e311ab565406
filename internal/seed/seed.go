// Package seed loads the demo catalog used for local development and demos.
package seed

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/plateadmin/plateadmin/internal/inventory"
	"github.com/plateadmin/plateadmin/internal/models"
)

type demoProduct struct {
	name, sku, category string
	price               int64
	stock               int
	rating              float64
	orders              int
	material, size      string
}

var demoCategories = []models.Category{
	{Name: "Premium Nameplates", Description: "High-end nameplates with premium materials", Status: models.StatusActive},
	{Name: "Office Nameplates", Description: "Professional nameplates for offices and desks", Status: models.StatusActive},
	{Name: "Modern Design", Description: "Contemporary designs with clean lines", Status: models.StatusActive},
	{Name: "Traditional", Description: "Classic carved and engraved designs", Status: models.StatusInactive},
	{Name: "Custom Nameplates", Description: "Made-to-order designs", Status: models.StatusActive},
	{Name: "Eco-Friendly", Description: "Sustainable and recycled materials", Status: models.StatusActive},
	{Name: "Luxury Collection", Description: "Limited edition luxury pieces", Status: models.StatusActive},
	{Name: "Budget Range", Description: "Affordable everyday nameplates", Status: models.StatusActive},
}

var demoProducts = []demoProduct{
	{"Gold Plated Nameplate", "NP-GOLD-001", "Premium Nameplates", 2499, 45, 4.8, 124, "Gold Plated Brass", "12x4 inches"},
	{"Brass Office Nameplate", "NP-BRASS-002", "Office Nameplates", 1899, 32, 4.6, 98, "Brass", "10x3 inches"},
	{"Wooden Nameplate", "NP-WOOD-003", "Traditional", 1299, 18, 4.5, 76, "Teak Wood", "12x4 inches"},
	{"Acrylic Desk Nameplate", "NP-ACRY-004", "Modern Design", 899, 56, 4.3, 152, "Acrylic", "8x2 inches"},
	{"Stainless Steel Nameplate", "NP-STEEL-005", "Office Nameplates", 2199, 24, 4.7, 64, "Stainless Steel", "12x4 inches"},
}

var demoCustomers = []models.Customer{
	{Name: "Arjun Patel", Email: "arjun@example.com", Phone: "+91 98765 43210", Location: "Mumbai, MH", TotalOrders: 12, TotalSpent: 45250, Status: models.StatusActive, LoyaltyTier: "Gold", Rating: 4.8},
	{Name: "Priya Sharma", Email: "priya.s@example.com", Phone: "+91 98765 43211", Location: "Delhi, DL", TotalOrders: 8, TotalSpent: 28700, Status: models.StatusActive, LoyaltyTier: "Silver", Rating: 4.5},
	{Name: "Rohan Mehta", Email: "rohan.m@example.com", Phone: "+91 98765 43212", Location: "Bangalore, KA", TotalOrders: 3, TotalSpent: 8900, Status: models.StatusActive, LoyaltyTier: "Bronze", Rating: 4.2},
}

var demoOrders = []models.Order{
	{Number: "ORD-001", CustomerName: "Arjun Patel", Contact: "+91 98765 43210", Items: []string{"Gold Plated Nameplate"}, TotalAmount: 2499, OrderDate: date("2024-03-15"), Status: models.OrderPending, PaymentMethod: "Credit Card"},
	{Number: "ORD-002", CustomerName: "Priya Sharma", Contact: "+91 98765 43211", Items: []string{"Brass Office Nameplate", "Wooden Nameplate"}, TotalAmount: 3198, OrderDate: date("2024-03-14"), Status: models.OrderAccepted, PaymentMethod: "UPI"},
	{Number: "ORD-003", CustomerName: "Rohan Mehta", Contact: "+91 98765 43212", Items: []string{"Acrylic Desk Nameplate"}, TotalAmount: 899, OrderDate: date("2024-03-14"), Status: models.OrderShipped, PaymentMethod: "Debit Card"},
	{Number: "ORD-004", CustomerName: "Sneha Reddy", Contact: "+91 98765 43213", Items: []string{"Stainless Steel Nameplate", "LED Backlit Nameplate"}, TotalAmount: 8697, OrderDate: date("2024-03-13"), Status: models.OrderDelivered, PaymentMethod: "Net Banking"},
	{Number: "ORD-005", CustomerName: "Vikram Singh", Contact: "+91 98765 43214", Items: []string{"Marble Nameplate"}, TotalAmount: 3499, OrderDate: date("2024-03-13"), Status: models.OrderRejected, PaymentMethod: "Credit Card", RejectionReason: "Item out of stock"},
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// Demo inserts the demo data unless products already exist
func Demo(db *gorm.DB, log zerolog.Logger) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		log.Debug().Int64("products", count).Msg("Catalog not empty - skipping demo seed")
		return nil
	}

	threshold := inventory.Threshold(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		categories := make([]models.Category, len(demoCategories))
		copy(categories, demoCategories)
		if err := tx.Create(&categories).Error; err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}

		categoryIDs := make(map[string]string, len(categories))
		for _, c := range categories {
			categoryIDs[c.Name] = c.ID
		}

		products := make([]models.Product, 0, len(demoProducts))
		for _, p := range demoProducts {
			categoryID := categoryIDs[p.category]
			products = append(products, models.Product{
				Name:       p.name,
				SKU:        p.sku,
				CategoryID: &categoryID,
				Price:      p.price,
				Stock:      p.stock,
				Status:     inventory.StatusForStock(p.stock, threshold),
				Rating:     p.rating,
				Orders:     p.orders,
				Material:   p.material,
				Size:       p.size,
			})
		}
		if err := tx.Create(&products).Error; err != nil {
			return fmt.Errorf("failed to seed products: %w", err)
		}

		customers := make([]models.Customer, len(demoCustomers))
		copy(customers, demoCustomers)
		if err := tx.Create(&customers).Error; err != nil {
			return fmt.Errorf("failed to seed customers: %w", err)
		}

		orders := make([]models.Order, len(demoOrders))
		copy(orders, demoOrders)
		if err := tx.Create(&orders).Error; err != nil {
			return fmt.Errorf("failed to seed orders: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	log.Info().
		Int("categories", len(demoCategories)).
		Int("products", len(demoProducts)).
		Int("customers", len(demoCustomers)).
		Int("orders", len(demoOrders)).
		Msg("Seeded demo data")

	return nil
}
