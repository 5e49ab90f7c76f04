package sync

import (
	"time"

	"gorm.io/gorm"

	"github.com/our-cpg/planogram-backend/internal/models"
)

// minCoPurchases is the threshold below which a variant pair is noise, not
// a correlation.
const minCoPurchases = 2

// RecomputeReturningCustomers sets the authoritative returning flag on every
// order: true iff the owning customer has more than one order right now.
// This replaces the batch-local approximation made while ingesting. Returns
// the number of orders flagged as returning.
func RecomputeReturningCustomers(db *gorm.DB) (int64, error) {
	err := db.Exec(`
		UPDATE orders SET is_returning_customer = CASE
			WHEN customer_id IS NOT NULL AND customer_id IN (
				SELECT customer_id FROM (
					SELECT customer_id FROM orders
					WHERE customer_id IS NOT NULL
					GROUP BY customer_id
					HAVING COUNT(*) > 1
				) AS multi
			) THEN TRUE
			ELSE FALSE
		END`).Error
	if err != nil {
		return 0, err
	}

	var returning int64
	err = db.Model(&models.Order{}).Where("is_returning_customer = ?", true).Count(&returning).Error
	return returning, err
}

// RecomputeCustomerStats replaces the per-customer rollup wholesale.
func RecomputeCustomerStats(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM customer_stats`).Error; err != nil {
			return err
		}
		return tx.Exec(`
			INSERT INTO customer_stats
				(customer_id, email_hash, order_count, total_spent, avg_order_value, first_order_at, last_order_at, updated_at)
			SELECT customer_id, MAX(email_hash), COUNT(*), SUM(total_price), AVG(total_price),
				MIN(processed_at), MAX(processed_at), CURRENT_TIMESTAMP
			FROM orders
			WHERE customer_id IS NOT NULL
			GROUP BY customer_id`).Error
	})
}

// RecomputeCorrelations rebuilds the co-purchase table from scratch. The
// self-join keeps variant_a strictly below variant_b, which both rules out
// self-pairs and guarantees one canonical row per unordered pair. The score
// denominator |A∪B| falls out of |A| + |B| - |A∩B| where the intersection
// is exactly the pair's co-purchase count.
func RecomputeCorrelations(db *gorm.DB) (int64, error) {
	type pairRow struct {
		VariantA string
		VariantB string
		Cnt      int
	}
	var pairs []pairRow
	err := db.Raw(`
		SELECT a.variant_id AS variant_a, b.variant_id AS variant_b, COUNT(*) AS cnt
		FROM order_items a
		JOIN order_items b ON a.order_id = b.order_id AND a.variant_id < b.variant_id
		GROUP BY a.variant_id, b.variant_id
		HAVING COUNT(*) >= ?`, minCoPurchases).Scan(&pairs).Error
	if err != nil {
		return 0, err
	}

	type orderCountRow struct {
		VariantID string
		Cnt       int
	}
	var counts []orderCountRow
	err = db.Raw(`
		SELECT variant_id, COUNT(DISTINCT order_id) AS cnt
		FROM order_items
		GROUP BY variant_id`).Scan(&counts).Error
	if err != nil {
		return 0, err
	}
	ordersWith := make(map[string]int, len(counts))
	for _, c := range counts {
		ordersWith[c.VariantID] = c.Cnt
	}

	now := time.Now()
	rows := make([]models.ProductCorrelation, 0, len(pairs))
	for _, p := range pairs {
		either := ordersWith[p.VariantA] + ordersWith[p.VariantB] - p.Cnt
		score := 0.0
		if either > 0 {
			score = float64(p.Cnt) / float64(either)
		}
		rows = append(rows, models.ProductCorrelation{
			VariantA:        p.VariantA,
			VariantB:        p.VariantB,
			CoPurchaseCount: p.Cnt,
			Score:           score,
			ComputedAt:      now,
		})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM product_correlations`).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 200).Error
	})
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

// RecomputeSales replaces every sales aggregate with unit counts over the
// fixed lookback windows. Counts are always rebuilt from persisted line
// items, never incremented, so overlapping syncs cannot double-count.
func RecomputeSales(db *gorm.DB) error {
	now := time.Now()
	type salesRow struct {
		VariantID string
		U1        int
		U7        int
		U30       int
		U90       int
		U365      int
		UAll      int
	}
	var sums []salesRow
	err := db.Raw(`
		SELECT oi.variant_id AS variant_id,
			SUM(CASE WHEN o.processed_at >= ? THEN oi.quantity ELSE 0 END) AS u1,
			SUM(CASE WHEN o.processed_at >= ? THEN oi.quantity ELSE 0 END) AS u7,
			SUM(CASE WHEN o.processed_at >= ? THEN oi.quantity ELSE 0 END) AS u30,
			SUM(CASE WHEN o.processed_at >= ? THEN oi.quantity ELSE 0 END) AS u90,
			SUM(CASE WHEN o.processed_at >= ? THEN oi.quantity ELSE 0 END) AS u365,
			SUM(oi.quantity) AS u_all
		FROM order_items oi
		JOIN orders o ON o.order_id = oi.order_id
		GROUP BY oi.variant_id`,
		now.AddDate(0, 0, -1), now.AddDate(0, 0, -7), now.AddDate(0, 0, -30),
		now.AddDate(0, 0, -90), now.AddDate(0, 0, -365)).Scan(&sums).Error
	if err != nil {
		return err
	}

	rows := make([]models.SalesAggregate, 0, len(sums))
	for _, s := range sums {
		rows = append(rows, models.SalesAggregate{
			VariantID:    s.VariantID,
			Units1d:      s.U1,
			Units7d:      s.U7,
			Units30d:     s.U30,
			Units90d:     s.U90,
			Units365d:    s.U365,
			UnitsAllTime: s.UAll,
			ComputedAt:   now,
		})
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM sales_aggregates`).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 200).Error
	})
}
