package models

import (
	"time"
)

// SalesAggregate holds rolling unit counts per variant. Counts are derived
// and replaced wholesale on each sales sync, never incremented in place, so
// overlapping runs cannot double-count.
type SalesAggregate struct {
	VariantID    string    `json:"variant_id" gorm:"column:variant_id;primary_key"`
	Units1d      int       `json:"units_1d" gorm:"column:units_1d"`
	Units7d      int       `json:"units_7d" gorm:"column:units_7d"`
	Units30d     int       `json:"units_30d" gorm:"column:units_30d"`
	Units90d     int       `json:"units_90d" gorm:"column:units_90d"`
	Units365d    int       `json:"units_365d" gorm:"column:units_365d"`
	UnitsAllTime int       `json:"units_all_time"`
	ComputedAt   time.Time `json:"computed_at"`
}

func (SalesAggregate) TableName() string {
	return "sales_aggregates"
}
