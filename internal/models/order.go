package models

import (
	"time"
)

// Order is one remote order. CustomerID is nil for guest checkouts and
// EmailHash is a one-way digest; plaintext customer emails are never stored.
type Order struct {
	OrderID             string    `json:"order_id" gorm:"column:order_id;primary_key"`
	OrderNumber         string    `json:"order_number"`
	CustomerID          *string   `json:"customer_id" gorm:"index"`
	EmailHash           *string   `json:"email_hash"`
	TotalPrice          float64   `json:"total_price" gorm:"type:decimal(10,2)"`
	SubtotalPrice       float64   `json:"subtotal_price" gorm:"type:decimal(10,2)"`
	TotalTax            float64   `json:"total_tax" gorm:"type:decimal(10,2)"`
	ProcessedAt         time.Time `json:"processed_at" gorm:"index;not null"`
	IsReturningCustomer bool      `json:"is_returning_customer"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is one line within an order. (OrderID, VariantID) is unique, so
// replaying a sync cannot double-count a line. Custom sale lines with no
// catalog linkage get a synthetic variant ID scoped to order and position.
type OrderItem struct {
	OrderID      string    `json:"order_id" gorm:"primary_key"`
	VariantID    string    `json:"variant_id" gorm:"primary_key"`
	ProductID    string    `json:"product_id"`
	Title        string    `json:"title"`
	VariantTitle string    `json:"variant_title"`
	Quantity     int       `json:"quantity"`
	UnitPrice    float64   `json:"unit_price" gorm:"type:decimal(10,2)"`
	Position     int       `json:"position"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
