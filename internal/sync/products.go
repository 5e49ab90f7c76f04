package sync

import (
	"fmt"
	"strconv"
	"unicode"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/our-cpg/planogram-backend/internal/logger"
	"github.com/our-cpg/planogram-backend/internal/models"
	"github.com/our-cpg/planogram-backend/internal/services/shopify"
)

// variantTitleSentinel is what Shopify reports for products with no variant
// distinction; it is normalized to empty.
const variantTitleSentinel = "Default Title"

type ProductSyncResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// ProductEngine refreshes the full local catalog from the remote store.
type ProductEngine struct {
	db         *gorm.DB
	logger     *logger.Logger
	costRate   float64
	maxRecords int
}

func NewProductEngine(db *gorm.DB, logger *logger.Logger, costRate float64, maxRecords int) *ProductEngine {
	return &ProductEngine{
		db:         db,
		logger:     logger,
		costRate:   costRate,
		maxRecords: maxRecords,
	}
}

// SyncProducts paginates the entire catalog and upserts every variant of
// every accepted product. Products whose title contains no lowercase letter
// are data-entry artifacts, not real product names, and are skipped.
func (e *ProductEngine) SyncProducts(client *shopify.Client) (*ProductSyncResult, error) {
	if count, err := client.ProductsCount(); err == nil {
		e.logger.Info("Catalog reports %d products", count)
		if count > e.maxRecords {
			e.logger.Warn("Catalog exceeds refresh cap of %d records, fetch will be truncated", e.maxRecords)
		}
	}

	result := &ProductSyncResult{}
	fetched := 0
	pageInfo := ""

	for {
		page, err := client.GetProducts(shopify.MaxPageSize, pageInfo)
		if err != nil {
			return nil, err
		}

		for i := range page.Products {
			product := &page.Products[i]
			if !hasLowercase(product.Title) {
				result.Skipped++
				continue
			}

			for j := range product.Variants {
				if err := e.upsertVariant(product, &product.Variants[j]); err != nil {
					e.logger.Error("Failed to upsert variant %d: %v", product.Variants[j].ID, err)
					continue
				}
				result.Inserted++
			}
		}

		fetched += len(page.Products)
		if page.NextPageInfo == "" || fetched >= e.maxRecords {
			break
		}
		pageInfo = page.NextPageInfo
		client.Sleep()
	}

	// Dependent step: refresh the rolling unit counts so newly cached
	// variants get aggregate rows immediately.
	if err := e.SyncSales(); err != nil {
		e.logger.Error("Failed to recompute sales aggregates: %v", err)
	}

	e.logger.Info("Product sync done: %d variants upserted, %d products skipped", result.Inserted, result.Skipped)
	return result, nil
}

func (e *ProductEngine) upsertVariant(product *shopify.Product, variant *shopify.Variant) error {
	price, err := strconv.ParseFloat(variant.Price, 64)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", variant.Price, err)
	}

	var compareAt *float64
	if variant.CompareAtPrice != nil && *variant.CompareAtPrice != "" {
		if v, err := strconv.ParseFloat(*variant.CompareAtPrice, 64); err == nil && v > 0 {
			compareAt = &v
		}
	}

	row := models.ProductVariant{
		VariantID:         fmt.Sprintf("%d", variant.ID),
		ProductID:         fmt.Sprintf("%d", product.ID),
		Title:             product.Title,
		VariantTitle:      normalizeVariantTitle(variant.Title),
		Barcode:           variant.Barcode,
		SKU:               variant.Sku,
		Price:             price,
		CompareAtPrice:    compareAt,
		CostEstimate:      e.estimateCost(price, compareAt),
		InventoryQuantity: variant.InventoryQuantity,
		Vendor:            product.Vendor,
		Tags:              product.Tags,
		RemoteCreatedAt:   variant.CreatedAt,
		RemoteUpdatedAt:   variant.UpdatedAt,
	}

	return e.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "variant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"product_id", "title", "variant_title", "barcode", "sku",
			"price", "compare_at_price", "cost_estimate", "inventory_quantity",
			"vendor", "tags", "remote_created_at", "remote_updated_at", "updated_at",
		}),
	}).Create(&row).Error
}

// estimateCost approximates unit cost as a configured fraction of the list
// price. When a compare-at price exists the variant is on markdown, so the
// estimate is anchored to the original list price instead.
func (e *ProductEngine) estimateCost(price float64, compareAt *float64) float64 {
	base := price
	if compareAt != nil && *compareAt > price {
		base = *compareAt
	}
	return roundCents(base * e.costRate)
}

// SyncSales replaces every sales aggregate row with counts recomputed from
// persisted orders over the fixed lookback windows.
func (e *ProductEngine) SyncSales() error {
	return RecomputeSales(e.db)
}

func normalizeVariantTitle(title string) string {
	if title == variantTitleSentinel {
		return ""
	}
	return title
}

func hasLowercase(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}

func roundCents(v float64) float64 {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	out, _ := strconv.ParseFloat(s, 64)
	return out
}
