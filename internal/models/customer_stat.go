package models

import (
	"time"
)

// CustomerStat is a per-customer rollup, replaced wholesale after each order
// sync rather than maintained incrementally.
type CustomerStat struct {
	CustomerID    string    `json:"customer_id" gorm:"primary_key"`
	EmailHash     *string   `json:"email_hash"`
	OrderCount    int       `json:"order_count"`
	TotalSpent    float64   `json:"total_spent" gorm:"type:decimal(12,2)"`
	AvgOrderValue float64   `json:"avg_order_value" gorm:"type:decimal(10,2)"`
	FirstOrderAt  time.Time `json:"first_order_at"`
	LastOrderAt   time.Time `json:"last_order_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (CustomerStat) TableName() string {
	return "customer_stats"
}
