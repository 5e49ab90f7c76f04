package models

import (
	"time"
)

// ProductVariant is one sellable configuration of a product, denormalized
// from the Shopify catalog. The remote variant ID is the primary key, so
// re-syncs overwrite rows instead of duplicating them.
type ProductVariant struct {
	VariantID         string    `json:"variant_id" gorm:"column:variant_id;primary_key"`
	ProductID         string    `json:"product_id" gorm:"not null"`
	Title             string    `json:"title" gorm:"not null"`
	VariantTitle      string    `json:"variant_title"`
	Barcode           *string   `json:"barcode" gorm:"index"`
	SKU               string    `json:"sku" gorm:"column:sku"`
	Price             float64   `json:"price" gorm:"type:decimal(10,2)"`
	CompareAtPrice    *float64  `json:"compare_at_price" gorm:"type:decimal(10,2)"`
	CostEstimate      float64   `json:"cost_estimate" gorm:"type:decimal(10,2)"`
	InventoryQuantity int       `json:"inventory_quantity"`
	Vendor            string    `json:"vendor"`
	Tags              string    `json:"tags"`
	RemoteCreatedAt   time.Time `json:"remote_created_at"`
	RemoteUpdatedAt   time.Time `json:"remote_updated_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}
