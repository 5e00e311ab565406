package models

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Role names. Roles are free text on the wire and are stored uppercased.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Product status values
const (
	ProductActive     = "active"
	ProductLowStock   = "low-stock"
	ProductOutOfStock = "out-of-stock"
	ProductInactive   = "inactive" // set by hand, never derived from stock
)

// Category and customer status values
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Order status values
const (
	OrderPending   = "pending"
	OrderAccepted  = "accepted"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderRejected  = "rejected"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// Config represents the global configuration for the single-tenant deployment
// This is a singleton model (only one row should exist)
type Config struct {
	BaseModel
	// Authentication configuration
	JWTSecret string `json:"-" gorm:"type:varchar(64);not null"` // Auto-generated on first setup (64 hex chars)

	// Inventory status refresh, empty schedule = no automatic refresh
	InventorySchedule      string     `json:"inventory_schedule"` // Cron expression, e.g. "0 * * * *"
	LowStockThreshold      int        `json:"low_stock_threshold" gorm:"not null;default:10"`
	LastInventoryRefreshAt *time.Time `json:"last_inventory_refresh_at"`
	NextInventoryRefreshAt *time.Time `json:"next_inventory_refresh_at"`
}

// User represents a dashboard account
type User struct {
	BaseModel
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Location     string    `json:"location"`
	Role         string    `json:"role" gorm:"not null;default:USER"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeSave normalizes the role so lookups can compare exactly
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Role = strings.ToUpper(strings.TrimSpace(u.Role))
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// PasswordReset is a single-use password reset grant. Only the token hash is stored.
type PasswordReset struct {
	BaseModel
	UserID    string     `json:"user_id" gorm:"not null;index"`
	TokenHash string     `json:"-" gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	UsedAt    *time.Time `json:"used_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Category groups products
type Category struct {
	BaseModel
	Name        string `json:"name" gorm:"not null;unique"`
	Description string `json:"description"`
	Status      string `json:"status" gorm:"not null;default:active"`

	// Computed fields (populated by queries, not persisted)
	ProductCount int64 `json:"product_count" gorm:"-"`
}

// Product is a sellable catalog item. Prices are whole rupees.
type Product struct {
	BaseModel
	Name        string    `json:"name" gorm:"not null"`
	SKU         string    `json:"sku" gorm:"not null;unique"`
	CategoryID  *string   `json:"category_id" gorm:"type:varchar(26);index"`
	Price       int64     `json:"price" gorm:"not null"`
	Stock       int       `json:"stock" gorm:"not null;default:0"`
	Status      string    `json:"status" gorm:"not null;default:active"`
	Rating      float64   `json:"rating" gorm:"not null;default:0"`
	Orders      int       `json:"orders" gorm:"not null;default:0"`
	Material    string    `json:"material"`
	Size        string    `json:"size"`
	Description string    `json:"description" gorm:"type:text"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

// Customer is a read-mostly record of a buyer
type Customer struct {
	BaseModel
	Name        string  `json:"name" gorm:"not null"`
	Email       string  `json:"email" gorm:"index"`
	Phone       string  `json:"phone"`
	Location    string  `json:"location"`
	TotalOrders int     `json:"total_orders" gorm:"not null;default:0"`
	TotalSpent  int64   `json:"total_spent" gorm:"not null;default:0"`
	Status      string  `json:"status" gorm:"not null;default:active"`
	LoyaltyTier string  `json:"loyalty_tier"`
	Rating      float64 `json:"rating"`
}

// Order is a customer order moving through the fulfilment states
type Order struct {
	BaseModel
	Number          string    `json:"number" gorm:"not null;unique"` // ORD-001 style
	CustomerName    string    `json:"customer" gorm:"not null"`
	Contact         string    `json:"contact"`
	Items           []string  `json:"items" gorm:"serializer:json"`
	TotalAmount     int64     `json:"total_amount" gorm:"not null"`
	OrderDate       time.Time `json:"date" gorm:"not null"`
	Status          string    `json:"status" gorm:"not null;default:pending;index"`
	PaymentMethod   string    `json:"payment_method"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&User{}, &Config{}, &PasswordReset{}, &Category{}, &Product{}, &Customer{}, &Order{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// FindByIDWithPreload finds a record by ID with preloading
func FindByIDWithPreload[T any](db *gorm.DB, id string, model *T, preloads ...string) error {
	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	return query.Where("id = ?", id).First(model).Error
}
