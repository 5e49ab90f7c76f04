package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/our-cpg/planogram-backend/internal/logger"
	"github.com/our-cpg/planogram-backend/internal/models"
	"github.com/our-cpg/planogram-backend/internal/services/shopify"
)

const (
	// lookbackBuffer rewinds the incremental window past the newest known
	// order to pick up last-minute edits near the boundary.
	lookbackBuffer = time.Hour

	// defaultWindow bounds the very first sync of an empty store.
	defaultWindow = 365 * 24 * time.Hour
)

// Outcome distinguishes a complete run from one that kept partial progress
// after the remote fetch failed mid-pagination.
type Outcome string

const (
	FullSync    Outcome = "full"
	PartialSync Outcome = "partial"
)

type OrderSyncResult struct {
	RunID           string  `json:"run_id"`
	OrdersProcessed int     `json:"orders_processed"`
	ItemsProcessed  int     `json:"items_processed"`
	ReturningOrders int64   `json:"returning_orders"`
	CorrelationRows int64   `json:"correlation_rows"`
	Outcome         Outcome `json:"outcome"`
	FailureReason   string  `json:"failure_reason,omitempty"`
	AlreadyRunning  bool    `json:"already_running,omitempty"`
}

type OrderSyncOptions struct {
	// Since overrides the computed incremental window start.
	Since time.Time

	// FetchAll ignores the incremental window entirely.
	FetchAll bool
}

// OrderEngine incrementally synchronizes remote orders and recomputes the
// derived analytics after each run.
type OrderEngine struct {
	db       *gorm.DB
	logger   *logger.Logger
	status   *Status
	maxPages int
}

func NewOrderEngine(db *gorm.DB, logger *logger.Logger, status *Status, maxPages int) *OrderEngine {
	return &OrderEngine{
		db:       db,
		logger:   logger,
		status:   status,
		maxPages: maxPages,
	}
}

func (e *OrderEngine) Status() *Status {
	return e.status
}

// SyncOrders fetches orders newer than the incremental window start,
// persists them idempotently, then recomputes returning-customer flags,
// customer stats, correlations, and sales aggregates. If pagination fails
// after some pages were already fetched, the run keeps the partial batch and
// reports a PartialSync outcome instead of discarding progress.
func (e *OrderEngine) SyncOrders(client *shopify.Client, opts OrderSyncOptions) (*OrderSyncResult, error) {
	runID, ok := e.status.TryStart()
	if !ok {
		return &OrderSyncResult{AlreadyRunning: true}, nil
	}

	result := &OrderSyncResult{RunID: runID, Outcome: FullSync}

	since := e.syncWindow(opts)
	if !since.IsZero() {
		e.logger.Info("Order sync %s fetching orders since %s", runID, since.Format(time.RFC3339))
	} else {
		e.logger.Info("Order sync %s fetching all orders", runID)
	}

	orders, fetchErr := e.fetchOrders(client, since)
	if fetchErr != nil {
		if len(orders) == 0 {
			e.status.Fail(fetchErr)
			return nil, fetchErr
		}
		// Keep the pages fetched before the failure; forward progress is
		// worth more here than all-or-nothing atomicity.
		result.Outcome = PartialSync
		result.FailureReason = fetchErr.Error()
		e.logger.Warn("Order fetch failed after %d orders, keeping partial batch: %v", len(orders), fetchErr)
	}

	// Batch-local returning view; corrected by the aggregate recompute below.
	customerSeen := make(map[string]int)

	for i := range orders {
		order := &orders[i]
		items, err := e.upsertOrder(order, customerSeen)
		if err != nil {
			e.logger.Error("Failed to persist order %d: %v", order.ID, err)
			continue
		}
		result.OrdersProcessed++
		result.ItemsProcessed += items
	}

	if err := e.recomputeAnalytics(result); err != nil {
		e.status.Fail(err)
		return nil, err
	}

	summary := fmt.Sprintf("%s: %d orders, %d items", result.Outcome, result.OrdersProcessed, result.ItemsProcessed)
	e.status.Finish(summary)
	e.logger.Info("Order sync %s finished (%s)", runID, summary)
	return result, nil
}

// syncWindow picks the fetch window start: an explicit override wins, a
// populated store yields its newest order minus the lookback buffer, and an
// empty store defaults to one year back.
func (e *OrderEngine) syncWindow(opts OrderSyncOptions) time.Time {
	if opts.FetchAll {
		return time.Time{}
	}
	if !opts.Since.IsZero() {
		return opts.Since
	}

	var newest models.Order
	err := e.db.Order("processed_at DESC").Take(&newest).Error
	if err == nil && !newest.ProcessedAt.IsZero() {
		return newest.ProcessedAt.Add(-lookbackBuffer)
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		e.logger.Error("Failed to read max order timestamp: %v", err)
	}
	return time.Now().Add(-defaultWindow)
}

func (e *OrderEngine) fetchOrders(client *shopify.Client, since time.Time) ([]shopify.Order, error) {
	var all []shopify.Order
	pageInfo := ""

	for page := 0; page < e.maxPages; page++ {
		resp, err := client.GetOrders(shopify.MaxPageSize, pageInfo, since)
		if err != nil {
			return all, err
		}
		all = append(all, resp.Orders...)
		if resp.NextPageInfo == "" {
			return all, nil
		}
		pageInfo = resp.NextPageInfo
		client.Sleep()
	}

	e.logger.Warn("Order fetch hit the %d page safety cap", e.maxPages)
	return all, nil
}

func (e *OrderEngine) upsertOrder(order *shopify.Order, customerSeen map[string]int) (int, error) {
	row := models.Order{
		OrderID:       fmt.Sprintf("%d", order.ID),
		OrderNumber:   orderNumber(order),
		TotalPrice:    parseMoney(order.TotalPrice),
		SubtotalPrice: parseMoney(order.SubtotalPrice),
		TotalTax:      parseMoney(order.TotalTax),
		ProcessedAt:   orderTimestamp(order),
	}

	if order.Customer != nil && order.Customer.ID != 0 {
		id := fmt.Sprintf("%d", order.Customer.ID)
		row.CustomerID = &id
		customerSeen[id]++
		row.IsReturningCustomer = customerSeen[id] > 1
	}

	if email := firstNonEmpty(order.Email, customerEmail(order)); email != "" {
		h := HashEmail(email)
		row.EmailHash = &h
	}

	err := e.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"order_number", "customer_id", "email_hash", "total_price",
			"subtotal_price", "total_tax", "processed_at",
			"is_returning_customer", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return 0, err
	}

	items := 0
	for i := range order.LineItems {
		item := &order.LineItems[i]
		position := i + 1
		if err := e.upsertLineItem(row.OrderID, position, item); err != nil {
			// One malformed line must not sink the rest of the order.
			e.logger.Error("Failed to persist line %d of order %s: %v", position, row.OrderID, err)
			continue
		}
		items++
	}
	return items, nil
}

func (e *OrderEngine) upsertLineItem(orderID string, position int, item *shopify.LineItem) error {
	variantID := ""
	productID := ""
	if item.VariantID != nil && *item.VariantID != 0 {
		variantID = fmt.Sprintf("%d", *item.VariantID)
	}
	if item.ProductID != nil && *item.ProductID != 0 {
		productID = fmt.Sprintf("%d", *item.ProductID)
	}
	if variantID == "" && productID == "" {
		// Manual custom sale with no catalog linkage. A synthetic ID scoped
		// to order and cart position keeps (order_id, variant_id) unique.
		variantID = fmt.Sprintf("custom-%s-%d", orderID, position)
	} else if variantID == "" {
		variantID = "product-" + productID
	}

	variantTitle := ""
	if item.VariantTitle != nil {
		variantTitle = normalizeVariantTitle(*item.VariantTitle)
	}

	row := models.OrderItem{
		OrderID:      orderID,
		VariantID:    variantID,
		ProductID:    productID,
		Title:        item.Title,
		VariantTitle: variantTitle,
		Quantity:     item.Quantity,
		UnitPrice:    parseMoney(item.Price),
		Position:     position,
	}

	return e.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}, {Name: "variant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"product_id", "title", "variant_title", "quantity",
			"unit_price", "position", "updated_at",
		}),
	}).Create(&row).Error
}

// recomputeAnalytics runs the wholesale post-pass once per sync call.
func (e *OrderEngine) recomputeAnalytics(result *OrderSyncResult) error {
	returning, err := RecomputeReturningCustomers(e.db)
	if err != nil {
		return fmt.Errorf("failed to recompute returning customers: %w", err)
	}
	result.ReturningOrders = returning

	if err := RecomputeCustomerStats(e.db); err != nil {
		return fmt.Errorf("failed to recompute customer stats: %w", err)
	}

	pairs, err := RecomputeCorrelations(e.db)
	if err != nil {
		return fmt.Errorf("failed to recompute correlations: %w", err)
	}
	result.CorrelationRows = pairs

	if err := RecomputeSales(e.db); err != nil {
		return fmt.Errorf("failed to recompute sales aggregates: %w", err)
	}
	return nil
}

// HashEmail one-way digests a customer email so orders can be joined on
// customer identity without storing the address itself.
func HashEmail(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

func customerEmail(order *shopify.Order) string {
	if order.Customer == nil {
		return ""
	}
	return order.Customer.Email
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func orderNumber(order *shopify.Order) string {
	if order.Name != "" {
		return order.Name
	}
	return strconv.FormatInt(order.OrderNumber, 10)
}

// orderTimestamp keeps the remote's zone-aware timestamp, falling back to
// created_at for orders that never reached processing.
func orderTimestamp(order *shopify.Order) time.Time {
	if !order.ProcessedAt.IsZero() {
		return order.ProcessedAt
	}
	return order.CreatedAt
}

func parseMoney(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
