package models

import (
	"time"
)

// ProductCorrelation is one unordered pair of variants that co-occur in at
// least two orders. VariantA sorts before VariantB, so each pair has exactly
// one row. Score = pair count / distinct orders containing either variant.
type ProductCorrelation struct {
	VariantA        string    `json:"variant_a" gorm:"primary_key"`
	VariantB        string    `json:"variant_b" gorm:"primary_key"`
	CoPurchaseCount int       `json:"co_purchase_count"`
	Score           float64   `json:"score"`
	ComputedAt      time.Time `json:"computed_at"`
}

func (ProductCorrelation) TableName() string {
	return "product_correlations"
}
