package sync_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/our-cpg/planogram-backend/internal/models"
	"github.com/our-cpg/planogram-backend/internal/sync"
)

// Three orders: Amy buys twice (once with a custom sale line), Ben once.
// Variants 901 and 902 co-occur in the first two orders.
const ordersBody = `{"orders":[
	{"id":1001,"name":"#1001","email":"amy@example.com","customer":{"id":501,"email":"amy@example.com"},
	 "total_price":"30.00","subtotal_price":"27.00","total_tax":"3.00","processed_at":"2026-08-20T10:00:00+10:00",
	 "line_items":[
		{"id":1,"variant_id":901,"product_id":90,"title":"Flat White Beans","quantity":1,"price":"18.00"},
		{"id":2,"variant_id":902,"product_id":90,"title":"Filter Papers","quantity":2,"price":"4.50"}
	 ]},
	{"id":1002,"name":"#1002","email":"ben@example.com","customer":{"id":502,"email":"ben@example.com"},
	 "total_price":"22.50","subtotal_price":"20.00","total_tax":"2.50","processed_at":"2026-08-21T09:30:00+10:00",
	 "line_items":[
		{"id":3,"variant_id":901,"product_id":90,"title":"Flat White Beans","quantity":1,"price":"18.00"},
		{"id":4,"variant_id":902,"product_id":90,"title":"Filter Papers","quantity":1,"price":"4.50"}
	 ]},
	{"id":1003,"name":"#1003","email":"amy@example.com","customer":{"id":501,"email":"amy@example.com"},
	 "total_price":"25.00","subtotal_price":"25.00","total_tax":"0.00","processed_at":"2026-08-22T15:45:00+10:00",
	 "line_items":[
		{"id":5,"variant_id":null,"product_id":null,"title":"Counter sale","quantity":1,"price":"7.00"},
		{"id":6,"variant_id":901,"product_id":90,"title":"Flat White Beans","quantity":1,"price":"18.00"}
	 ]}
]}`

func orderFixture(createdAtMins *[]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if min := r.URL.Query().Get("created_at_min"); createdAtMins != nil && r.URL.Query().Get("page_info") == "" {
			*createdAtMins = append(*createdAtMins, min)
		}
		fmt.Fprint(w, ordersBody)
	}
}

func newOrderEngine(t *testing.T) (*sync.OrderEngine, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	engine := sync.NewOrderEngine(db, testLogger, sync.NewStatus(), 500)
	return engine, db
}

func TestSyncOrders(t *testing.T) {
	engine, db := newOrderEngine(t)
	client := fakeShop(t, orderFixture(nil))

	result, err := engine.SyncOrders(client, sync.OrderSyncOptions{})
	require.NoError(t, err)
	require.Equal(t, sync.FullSync, result.Outcome)
	assert.Equal(t, 3, result.OrdersProcessed)
	assert.Equal(t, 6, result.ItemsProcessed)

	t.Run("orders persisted with hashed email only", func(t *testing.T) {
		var order models.Order
		require.NoError(t, db.Take(&order, "order_id = ?", "1001").Error)
		assert.Equal(t, "#1001", order.OrderNumber)
		assert.InDelta(t, 30.00, order.TotalPrice, 0.001)
		require.NotNil(t, order.EmailHash)
		assert.Equal(t, sync.HashEmail("amy@example.com"), *order.EmailHash)
		assert.NotContains(t, *order.EmailHash, "@")
	})

	t.Run("custom sale gets a synthetic variant scoped to order and position", func(t *testing.T) {
		var item models.OrderItem
		require.NoError(t, db.Take(&item, "order_id = ? AND position = ?", "1003", 1).Error)
		assert.Equal(t, "custom-1003-1", item.VariantID)
		assert.Equal(t, "Counter sale", item.Title)
	})

	t.Run("returning flag true iff the customer owns more than one order", func(t *testing.T) {
		assert.EqualValues(t, 2, result.ReturningOrders)

		var amyOrders []models.Order
		require.NoError(t, db.Where("customer_id = ?", "501").Find(&amyOrders).Error)
		require.Len(t, amyOrders, 2)
		for _, o := range amyOrders {
			assert.True(t, o.IsReturningCustomer, "order %s should be flagged", o.OrderID)
		}

		var benOrder models.Order
		require.NoError(t, db.Take(&benOrder, "customer_id = ?", "502").Error)
		assert.False(t, benOrder.IsReturningCustomer)
	})

	t.Run("one canonical correlation row per pair", func(t *testing.T) {
		var rows []models.ProductCorrelation
		require.NoError(t, db.Find(&rows).Error)
		require.Len(t, rows, 1, "only the pair co-occurring twice qualifies")

		pair := rows[0]
		assert.Equal(t, "901", pair.VariantA)
		assert.Equal(t, "902", pair.VariantB)
		assert.Equal(t, 2, pair.CoPurchaseCount)
		// 901 is in 3 orders, 902 in 2, together in 2: 2 / (3+2-2)
		assert.InDelta(t, 2.0/3.0, pair.Score, 0.001)
	})

	t.Run("customer stats replaced wholesale", func(t *testing.T) {
		var amy models.CustomerStat
		require.NoError(t, db.Take(&amy, "customer_id = ?", "501").Error)
		assert.Equal(t, 2, amy.OrderCount)
		assert.InDelta(t, 55.00, amy.TotalSpent, 0.001)
		assert.InDelta(t, 27.50, amy.AvgOrderValue, 0.001)
	})

	t.Run("replaying the sync does not double count", func(t *testing.T) {
		again, err := engine.SyncOrders(client, sync.OrderSyncOptions{FetchAll: true})
		require.NoError(t, err)
		assert.Equal(t, 3, again.OrdersProcessed)

		var items int64
		db.Model(&models.OrderItem{}).Count(&items)
		assert.EqualValues(t, 6, items, "exactly one row per (order, variant)")

		var pairs []models.ProductCorrelation
		require.NoError(t, db.Find(&pairs).Error)
		require.Len(t, pairs, 1)
		assert.Equal(t, 2, pairs[0].CoPurchaseCount)
	})
}

func TestSyncOrdersIncrementalWindow(t *testing.T) {
	engine, _ := newOrderEngine(t)

	var createdAtMins []string
	client := fakeShop(t, orderFixture(&createdAtMins))

	_, err := engine.SyncOrders(client, sync.OrderSyncOptions{})
	require.NoError(t, err)
	_, err = engine.SyncOrders(client, sync.OrderSyncOptions{})
	require.NoError(t, err)
	require.Len(t, createdAtMins, 2)

	first, err := time.Parse(time.RFC3339, createdAtMins[0])
	require.NoError(t, err)
	second, err := time.Parse(time.RFC3339, createdAtMins[1])
	require.NoError(t, err)

	// Empty store: first window defaults to roughly a year back.
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -365), first, time.Minute)

	// Populated store: window is the newest order minus the one-hour buffer.
	newest, _ := time.Parse(time.RFC3339, "2026-08-22T15:45:00+10:00")
	assert.WithinDuration(t, newest.Add(-time.Hour), second, time.Second)
	assert.True(t, second.After(first), "window start must move forward, never back past the default")
}

func TestSyncOrdersGuardRefusesConcurrentRun(t *testing.T) {
	db := testDB(t)
	status := sync.NewStatus()
	engine := sync.NewOrderEngine(db, testLogger, status, 500)

	_, ok := status.TryStart()
	require.True(t, ok)

	client := fakeShop(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("remote must not be called while a run is in flight")
	})

	result, err := engine.SyncOrders(client, sync.OrderSyncOptions{})
	require.NoError(t, err)
	assert.True(t, result.AlreadyRunning)
	assert.Zero(t, result.OrdersProcessed)
}

func TestSyncOrdersKeepsPartialProgress(t *testing.T) {
	engine, db := newOrderEngine(t)

	client := fakeShop(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page_info") == "broken-cursor" {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"errors":"boom"}`)
			return
		}
		w.Header().Set("Link", `<https://fake-shop.myshopify.com/admin/api/2023-10/orders.json?page_info=broken-cursor>; rel="next"`)
		fmt.Fprint(w, ordersBody)
	})

	result, err := engine.SyncOrders(client, sync.OrderSyncOptions{})
	require.NoError(t, err, "partial progress is a result, not an error")
	assert.Equal(t, sync.PartialSync, result.Outcome)
	assert.Equal(t, 3, result.OrdersProcessed)
	assert.Contains(t, result.FailureReason, "500")

	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	assert.EqualValues(t, 3, orders, "pages fetched before the failure are kept")

	// The guard is released for the next run.
	assert.False(t, engine.Status().Snapshot().IsProcessing)
}

func TestSyncOrdersFailFastWhenNothingFetched(t *testing.T) {
	engine, db := newOrderEngine(t)
	client := fakeShop(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errors":"Invalid API key"}`)
	})

	_, err := engine.SyncOrders(client, sync.OrderSyncOptions{})
	require.Error(t, err)

	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	assert.EqualValues(t, 0, orders)
	assert.Equal(t, sync.StateFailed, engine.Status().Snapshot().State)
}
