// Package views holds the table layouts shared by the dashboard pages and the CLI.
package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/plateadmin/plateadmin/internal/models"
	"github.com/plateadmin/plateadmin/internal/table"
)

const dateLayout = "2006-01-02"

// FormatAmount renders whole rupees with thousands separators, e.g. ₹45,250
func FormatAmount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	return sign + "₹" + b.String()
}

// Orders is the orders table layout
var Orders = []table.Column[models.Order]{
	{Title: "Order ID", Value: func(o models.Order) string { return o.Number }},
	{Title: "Customer", Value: func(o models.Order) string { return o.CustomerName }},
	{Title: "Contact", Value: func(o models.Order) string { return o.Contact }},
	{Title: "Items", Value: func(o models.Order) string { return strings.Join(o.Items, ", ") }},
	{Title: "Amount", Value: func(o models.Order) string { return FormatAmount(o.TotalAmount) }},
	{Title: "Date", Value: func(o models.Order) string {
		if o.OrderDate.IsZero() {
			return ""
		}
		return o.OrderDate.Format(dateLayout)
	}},
	{Title: "Status", Value: func(o models.Order) string { return o.Status }},
	{Title: "Payment", Value: func(o models.Order) string { return o.PaymentMethod }},
}

// Products is the products table layout
var Products = []table.Column[models.Product]{
	{Title: "Product", Value: func(p models.Product) string { return p.Name }},
	{Title: "SKU", Value: func(p models.Product) string { return p.SKU }},
	{Title: "Category", Value: func(p models.Product) string {
		if p.Category == nil {
			return ""
		}
		return p.Category.Name
	}},
	{Title: "Price", Value: func(p models.Product) string { return FormatAmount(p.Price) }},
	{Title: "Stock", Value: func(p models.Product) string { return strconv.Itoa(p.Stock) }},
	{Title: "Status", Value: func(p models.Product) string { return p.Status }},
	{Title: "Rating", Value: func(p models.Product) string { return fmt.Sprintf("%.1f", p.Rating) }},
	{Title: "Orders", Value: func(p models.Product) string { return strconv.Itoa(p.Orders) }},
}

// Categories is the categories table layout
var Categories = []table.Column[models.Category]{
	{Title: "Name", Value: func(c models.Category) string { return c.Name }},
	{Title: "Description", Value: func(c models.Category) string { return c.Description }},
	{Title: "Products", Value: func(c models.Category) string { return strconv.FormatInt(c.ProductCount, 10) }},
	{Title: "Status", Value: func(c models.Category) string { return c.Status }},
	{Title: "Created", Value: func(c models.Category) string {
		if c.CreatedAt.IsZero() {
			return ""
		}
		return c.CreatedAt.Format(dateLayout)
	}},
}

// Customers is the customers table layout
var Customers = []table.Column[models.Customer]{
	{Title: "Customer", Value: func(c models.Customer) string { return c.Name }},
	{Title: "Email", Value: func(c models.Customer) string { return c.Email }},
	{Title: "Phone", Value: func(c models.Customer) string { return c.Phone }},
	{Title: "Location", Value: func(c models.Customer) string { return c.Location }},
	{Title: "Orders", Value: func(c models.Customer) string { return strconv.Itoa(c.TotalOrders) }},
	{Title: "Spent", Value: func(c models.Customer) string { return FormatAmount(c.TotalSpent) }},
	{Title: "Tier", Value: func(c models.Customer) string { return c.LoyaltyTier }},
	{Title: "Status", Value: func(c models.Customer) string { return c.Status }},
}
