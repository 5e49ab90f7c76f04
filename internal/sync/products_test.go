package sync_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/our-cpg/planogram-backend/internal/models"
	"github.com/our-cpg/planogram-backend/internal/sync"
)

const productsBody = `{"products":[
	{"id":10,"title":"Mixed Case Thing","vendor":"Acme","tags":"snack,counter","variants":[
		{"id":101,"product_id":10,"title":"Default Title","price":"10.00","sku":"MCT-1","barcode":"9300000000017","inventory_quantity":24},
		{"id":102,"product_id":10,"title":"Large","price":"8.00","compare_at_price":"12.00","sku":"MCT-2","barcode":"9300000000024","inventory_quantity":5}
	]},
	{"id":11,"title":"ALL CAPS THING","vendor":"Acme","variants":[
		{"id":111,"product_id":11,"title":"Default Title","price":"3.00","sku":"ACT-1"}
	]}
]}`

func productCatalog(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "graphql.json") {
			fmt.Fprint(w, `{"data":{"productsCount":{"count":2}}}`)
			return
		}
		require.Contains(t, r.URL.Path, "products.json")
		fmt.Fprint(w, productsBody)
	}
}

func TestSyncProducts(t *testing.T) {
	db := testDB(t)
	client := fakeShop(t, productCatalog(t))
	engine := sync.NewProductEngine(db, testLogger, 0.60, 10000)

	result, err := engine.SyncProducts(client)
	require.NoError(t, err)

	t.Run("keeps mixed case, skips all caps", func(t *testing.T) {
		assert.Equal(t, 2, result.Inserted)
		assert.Equal(t, 1, result.Skipped)

		var count int64
		db.Model(&models.ProductVariant{}).Count(&count)
		assert.EqualValues(t, 2, count)

		var skipped int64
		db.Model(&models.ProductVariant{}).Where("variant_id = ?", "111").Count(&skipped)
		assert.EqualValues(t, 0, skipped)
	})

	t.Run("normalizes the variant title sentinel", func(t *testing.T) {
		var variant models.ProductVariant
		require.NoError(t, db.Take(&variant, "variant_id = ?", "101").Error)
		assert.Empty(t, variant.VariantTitle)

		variant = models.ProductVariant{}
		require.NoError(t, db.Take(&variant, "variant_id = ?", "102").Error)
		assert.Equal(t, "Large", variant.VariantTitle)
	})

	t.Run("estimates cost from the configured rate", func(t *testing.T) {
		var variant models.ProductVariant
		require.NoError(t, db.Take(&variant, "variant_id = ?", "101").Error)
		assert.InDelta(t, 6.00, variant.CostEstimate, 0.001)

		// Markdown variant: estimate anchors to compare-at, not sale price.
		variant = models.ProductVariant{}
		require.NoError(t, db.Take(&variant, "variant_id = ?", "102").Error)
		assert.InDelta(t, 7.20, variant.CostEstimate, 0.001)
		require.NotNil(t, variant.CompareAtPrice)
		assert.InDelta(t, 12.00, *variant.CompareAtPrice, 0.001)
	})

	t.Run("second run is idempotent", func(t *testing.T) {
		again, err := engine.SyncProducts(client)
		require.NoError(t, err)
		assert.Equal(t, 2, again.Inserted)

		var count int64
		db.Model(&models.ProductVariant{}).Count(&count)
		assert.EqualValues(t, 2, count, "re-sync must upsert, never duplicate")
	})
}

func TestSyncProductsRemoteFailure(t *testing.T) {
	db := testDB(t)
	client := fakeShop(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "graphql.json") {
			fmt.Fprint(w, `{"data":{"productsCount":{"count":0}}}`)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errors":"Invalid API key"}`)
	})
	engine := sync.NewProductEngine(db, testLogger, 0.60, 10000)

	_, err := engine.SyncProducts(client)
	require.Error(t, err)

	var count int64
	db.Model(&models.ProductVariant{}).Count(&count)
	assert.EqualValues(t, 0, count)
}
