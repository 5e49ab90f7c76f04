package shopify

import (
	"time"
)

// Product represents a Shopify product
type Product struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	BodyHTML    string     `json:"body_html"`
	Vendor      string     `json:"vendor"`
	ProductType string     `json:"product_type"`
	Handle      string     `json:"handle"`
	Status      string     `json:"status"`
	Tags        string     `json:"tags"`
	Variants    []Variant  `json:"variants"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at"`
}

// Variant represents a product variant
type Variant struct {
	ID                int64     `json:"id"`
	ProductID         int64     `json:"product_id"`
	Title             string    `json:"title"`
	Price             string    `json:"price"`
	Sku               string    `json:"sku"`
	Position          int       `json:"position"`
	CompareAtPrice    *string   `json:"compare_at_price"`
	Barcode           *string   `json:"barcode"`
	InventoryQuantity int       `json:"inventory_quantity"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Order represents a Shopify order
type Order struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	OrderNumber   int64      `json:"order_number"`
	Email         string     `json:"email"`
	Customer      *Customer  `json:"customer"`
	TotalPrice    string     `json:"total_price"`
	SubtotalPrice string     `json:"subtotal_price"`
	TotalTax      string     `json:"total_tax"`
	Currency      string     `json:"currency"`
	LineItems     []LineItem `json:"line_items"`
	ProcessedAt   time.Time  `json:"processed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CancelledAt   *time.Time `json:"cancelled_at"`
}

// Customer is the owner of an order; absent for guest checkouts.
type Customer struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// LineItem represents a line within an order. VariantID and ProductID are
// both nil for manual "custom sale" lines with no catalog linkage.
type LineItem struct {
	ID           int64   `json:"id"`
	VariantID    *int64  `json:"variant_id"`
	ProductID    *int64  `json:"product_id"`
	Title        string  `json:"title"`
	VariantTitle *string `json:"variant_title"`
	Sku          string  `json:"sku"`
	Quantity     int     `json:"quantity"`
	Price        string  `json:"price"`
}

// Shop represents shop information
type Shop struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Domain          string `json:"domain"`
	Currency        string `json:"currency"`
	Timezone        string `json:"timezone"`
	IanaTimezone    string `json:"iana_timezone"`
	MyshopifyDomain string `json:"myshopify_domain"`
}

// ProductsPage is one page of the products list plus the cursor for the
// next page, empty when pagination is complete.
type ProductsPage struct {
	Products     []Product
	NextPageInfo string
}

// OrdersPage is one page of the orders list plus the next cursor.
type OrdersPage struct {
	Orders       []Order
	NextPageInfo string
}
