package analytics

import (
	"time"

	"gorm.io/gorm"

	"github.com/our-cpg/planogram-backend/internal/models"
)

// ProductLookup is the barcode point-lookup payload: the variant, its sales
// counters (zeroed when no aggregate exists yet), and the top correlated
// products.
type ProductLookup struct {
	Variant    models.ProductVariant `json:"variant"`
	Sales      models.SalesAggregate `json:"sales"`
	Correlated []CorrelatedProduct   `json:"correlated"`
}

// CorrelatedProduct is one co-purchase partner of a looked-up variant.
type CorrelatedProduct struct {
	VariantID       string  `json:"variant_id"`
	Title           string  `json:"title"`
	VariantTitle    string  `json:"variant_title"`
	CoPurchaseCount int     `json:"co_purchase_count"`
	Score           float64 `json:"score"`
}

// LookupByBarcode returns at most one variant for the given barcode. The
// barcode column is deliberately not unique-constrained; duplicates are
// tolerated and the winner is arbitrary.
func LookupByBarcode(db *gorm.DB, barcode string, topN int) (*ProductLookup, error) {
	var variant models.ProductVariant
	err := db.Where("barcode = ?", barcode).Limit(1).Take(&variant).Error
	if err != nil {
		return nil, err
	}

	lookup := &ProductLookup{
		Variant: variant,
		Sales:   models.SalesAggregate{VariantID: variant.VariantID},
	}

	var sales models.SalesAggregate
	if err := db.Where("variant_id = ?", variant.VariantID).Take(&sales).Error; err == nil {
		lookup.Sales = sales
	}

	correlated, err := CorrelatedFor(db, variant.VariantID, topN)
	if err != nil {
		return nil, err
	}
	lookup.Correlated = correlated
	return lookup, nil
}

// CorrelatedFor lists the strongest co-purchase partners of a variant,
// ordered by co-purchase count then score.
func CorrelatedFor(db *gorm.DB, variantID string, topN int) ([]CorrelatedProduct, error) {
	var rows []CorrelatedProduct
	err := db.Raw(`
		SELECT CASE WHEN pc.variant_a = ? THEN pc.variant_b ELSE pc.variant_a END AS variant_id,
			COALESCE(pv.title, '') AS title,
			COALESCE(pv.variant_title, '') AS variant_title,
			pc.co_purchase_count,
			pc.score
		FROM product_correlations pc
		LEFT JOIN product_variants pv
			ON pv.variant_id = CASE WHEN pc.variant_a = ? THEN pc.variant_b ELSE pc.variant_a END
		WHERE pc.variant_a = ? OR pc.variant_b = ?
		ORDER BY pc.co_purchase_count DESC, pc.score DESC
		LIMIT ?`,
		variantID, variantID, variantID, variantID, topN).Scan(&rows).Error
	return rows, err
}

// PeriodStat is the order count and revenue within one calendar window.
type PeriodStat struct {
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// SalesStats are the fixed calendar rollups served by the stats endpoint.
type SalesStats struct {
	Today     PeriodStat `json:"today"`
	ThisWeek  PeriodStat `json:"this_week"`
	ThisMonth PeriodStat `json:"this_month"`
	ThisYear  PeriodStat `json:"this_year"`
}

// ComputeSalesStats buckets orders into the calendar windows for the
// storefront's time zone.
func ComputeSalesStats(db *gorm.DB, now time.Time, utcOffsetHours int) (*SalesStats, error) {
	windows := ComputeWindows(now, utcOffsetHours)

	stats := &SalesStats{}
	for _, bucket := range []struct {
		since time.Time
		dest  *PeriodStat
	}{
		{windows.Today, &stats.Today},
		{windows.ThisWeek, &stats.ThisWeek},
		{windows.ThisMonth, &stats.ThisMonth},
		{windows.ThisYear, &stats.ThisYear},
	} {
		var row struct {
			Orders  int64
			Revenue float64
		}
		err := db.Raw(`
			SELECT COUNT(*) AS orders, COALESCE(SUM(total_price), 0) AS revenue
			FROM orders
			WHERE processed_at >= ?`, bucket.since.UTC()).Scan(&row).Error
		if err != nil {
			return nil, err
		}
		bucket.dest.Orders = row.Orders
		bucket.dest.Revenue = row.Revenue
	}
	return stats, nil
}

// InventoryForecast is one variant's projected stock runway.
type InventoryForecast struct {
	VariantID         string    `json:"variant_id"`
	Title             string    `json:"title"`
	VariantTitle      string    `json:"variant_title"`
	Barcode           *string   `json:"barcode"`
	SKU               string    `json:"sku"`
	InventoryQuantity int       `json:"inventory_quantity"`
	Units30d          int       `json:"units_30d"`
	DailyVelocity     float64   `json:"daily_velocity"`
	DaysOfStock       float64   `json:"days_of_stock"`
	Risk              RiskLevel `json:"risk"`
}

// ComputeForecasts classifies every known variant's stock-out risk from its
// on-hand quantity and 30-day sales velocity.
func ComputeForecasts(db *gorm.DB) ([]InventoryForecast, error) {
	type row struct {
		VariantID         string
		Title             string
		VariantTitle      string
		Barcode           *string
		Sku               string
		InventoryQuantity int
		Units30           int
	}
	var rows []row
	err := db.Raw(`
		SELECT pv.variant_id, pv.title, pv.variant_title, pv.barcode, pv.sku,
			pv.inventory_quantity, COALESCE(sa.units_30d, 0) AS units30
		FROM product_variants pv
		LEFT JOIN sales_aggregates sa ON sa.variant_id = pv.variant_id
		ORDER BY pv.title, pv.variant_title`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	forecasts := make([]InventoryForecast, 0, len(rows))
	for _, r := range rows {
		forecasts = append(forecasts, InventoryForecast{
			VariantID:         r.VariantID,
			Title:             r.Title,
			VariantTitle:      r.VariantTitle,
			Barcode:           r.Barcode,
			SKU:               r.Sku,
			InventoryQuantity: r.InventoryQuantity,
			Units30d:          r.Units30,
			DailyVelocity:     float64(r.Units30) / 30.0,
			DaysOfStock:       DaysOfStock(r.InventoryQuantity, r.Units30),
			Risk:              ClassifyRisk(r.InventoryQuantity, r.Units30),
		})
	}
	return forecasts, nil
}
