package database

// migrations is an ordered list of migration groups. Each group is applied
// in a single transaction and recorded in schema_migrations; the version is
// the 1-based index into this slice. Append new groups, never edit old ones.
var migrations = [][]string{
	// Migration 1: core tables
	{
		`CREATE TABLE IF NOT EXISTS store_connections (
			id UUID PRIMARY KEY,
			shop_domain TEXT UNIQUE NOT NULL,
			access_token TEXT NOT NULL,
			shop_name TEXT,
			currency TEXT,
			timezone TEXT,
			connected_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS product_variants (
			variant_id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL,
			title TEXT NOT NULL,
			variant_title TEXT,
			barcode TEXT,
			sku TEXT,
			price DECIMAL(10,2),
			compare_at_price DECIMAL(10,2),
			cost_estimate DECIMAL(10,2),
			inventory_quantity INTEGER DEFAULT 0,
			vendor TEXT,
			tags TEXT,
			remote_created_at TIMESTAMPTZ,
			remote_updated_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_product_variants_barcode ON product_variants (barcode)`,

		`CREATE TABLE IF NOT EXISTS sales_aggregates (
			variant_id TEXT PRIMARY KEY,
			units_1d INTEGER DEFAULT 0,
			units_7d INTEGER DEFAULT 0,
			units_30d INTEGER DEFAULT 0,
			units_90d INTEGER DEFAULT 0,
			units_365d INTEGER DEFAULT 0,
			units_all_time INTEGER DEFAULT 0,
			computed_at TIMESTAMPTZ
		)`,
	},

	// Migration 2: orders and line items, unique from day one so replayed
	// syncs can never create duplicates needing after-the-fact cleanup
	{
		`CREATE TABLE IF NOT EXISTS orders (
			order_id TEXT PRIMARY KEY,
			order_number TEXT,
			customer_id TEXT,
			email_hash TEXT,
			total_price DECIMAL(10,2),
			subtotal_price DECIMAL(10,2),
			total_tax DECIMAL(10,2),
			processed_at TIMESTAMPTZ NOT NULL,
			is_returning_customer BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders (customer_id)`,

		`CREATE INDEX IF NOT EXISTS idx_orders_processed_at ON orders (processed_at)`,

		`CREATE TABLE IF NOT EXISTS order_items (
			order_id TEXT NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
			variant_id TEXT NOT NULL,
			product_id TEXT,
			title TEXT,
			variant_title TEXT,
			quantity INTEGER DEFAULT 0,
			unit_price DECIMAL(10,2),
			position INTEGER DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (order_id, variant_id)
		)`,
	},

	// Migration 3: analytics tables
	{
		`CREATE TABLE IF NOT EXISTS product_correlations (
			variant_a TEXT NOT NULL,
			variant_b TEXT NOT NULL,
			co_purchase_count INTEGER DEFAULT 0,
			score DECIMAL(8,6) DEFAULT 0,
			computed_at TIMESTAMPTZ,
			PRIMARY KEY (variant_a, variant_b)
		)`,

		`CREATE TABLE IF NOT EXISTS customer_stats (
			customer_id TEXT PRIMARY KEY,
			email_hash TEXT,
			order_count INTEGER DEFAULT 0,
			total_spent DECIMAL(12,2) DEFAULT 0,
			avg_order_value DECIMAL(10,2) DEFAULT 0,
			first_order_at TIMESTAMPTZ,
			last_order_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,
	},
}
