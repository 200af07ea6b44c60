package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllCategories is the category sentinel that disables filtering.
const AllCategories = "All"

// Product is a catalog entry as persisted in the products table.
type Product struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	Category    string          `json:"category" yaml:"category"`
	Description string          `json:"description" yaml:"description"`
	Images      []string        `json:"images" yaml:"images"`
	Sizes       []string        `json:"sizes" yaml:"sizes"`
	Colors      []string        `json:"colors" yaml:"colors"`
	IsNew       bool            `json:"is_new" yaml:"is_new"`
	Rating      decimal.Decimal `json:"rating" yaml:"rating"`
	ReviewCount int             `json:"review_count" yaml:"review_count"`
}

// HasSize reports whether size is one of the product's sizes.
func (p Product) HasSize(size string) bool {
	return slices.Contains(p.Sizes, size)
}

// HasColor reports whether color is one of the product's colors.
func (p Product) HasColor(color string) bool {
	return slices.Contains(p.Colors, color)
}

// Order is an order header row.
type Order struct {
	ID              string          `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          OrderStatus     `json:"status"`
	UserID          uuid.NullUUID   `json:"user_id"`
	ShippingAddress *string         `json:"shipping_address,omitempty"`
}

// OrderItem is a line of an order. PriceAtPurchase is a snapshot taken when
// the order was written and never follows later catalog price changes.
type OrderItem struct {
	ID              int64           `json:"id"`
	OrderID         string          `json:"order_id"`
	ProductID       string          `json:"product_id"`
	Quantity        int             `json:"quantity"`
	SelectedSize    string          `json:"selected_size"`
	SelectedColor   string          `json:"selected_color"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

// CartItem is a session-local cart entry. The embedded Product is a snapshot
// taken when the entry was first added.
type CartItem struct {
	Product       Product `json:"product"`
	SelectedSize  string  `json:"selected_size"`
	SelectedColor string  `json:"selected_color"`
	Quantity      int     `json:"quantity"`
}

// Matches reports whether the entry has the (product, size, color) key.
func (c CartItem) Matches(productID, size, color string) bool {
	return c.Product.ID == productID && c.SelectedSize == size && c.SelectedColor == color
}

// LineTotal is price × quantity for the entry.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Product.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// Owner is the opaque identity supplied by the authentication collaborator.
type Owner struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// OrderLine is one requested item of an OrderInput.
type OrderLine struct {
	ProductID       string          `json:"product_id"`
	Quantity        int             `json:"quantity"`
	SelectedSize    string          `json:"selected_size"`
	SelectedColor   string          `json:"selected_color"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

// OrderInput is everything needed to write one order. TotalAmount is
// computed by the caller and stored as given.
type OrderInput struct {
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress string          `json:"shipping_address,omitempty"`
	Owner           *Owner          `json:"owner,omitempty"` // nil for anonymous checkout
	Items           []OrderLine     `json:"items"`
}

// Stats summarizes the store for the admin dashboard.
type Stats struct {
	TotalOrders    int             `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalProducts  int             `json:"total_products"`
	TotalCustomers int             `json:"total_customers"`
}

// Customer aggregates the orders placed under one email address.
type Customer struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Orders     int             `json:"orders"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	LastOrder  time.Time       `json:"last_order"`
}
