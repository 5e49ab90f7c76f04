package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/our-cpg/planogram-backend/internal/events"
	"github.com/our-cpg/planogram-backend/internal/logger"
	"github.com/our-cpg/planogram-backend/internal/models"
	"github.com/our-cpg/planogram-backend/internal/services/shopify"
	"github.com/our-cpg/planogram-backend/internal/sync"
)

// EventPublisher decouples handlers from the Kafka writer; nil disables
// event emission.
type EventPublisher interface {
	PublishSyncEvent(event events.SyncEvent)
}

type SyncHandler struct {
	db        *gorm.DB
	logger    *logger.Logger
	products  *sync.ProductEngine
	orders    *sync.OrderEngine
	publisher EventPublisher

	// NewClient builds the remote client; tests swap it for one aimed at a
	// fake shop.
	NewClient func(shopDomain, accessToken string) *shopify.Client
}

func NewSyncHandler(db *gorm.DB, logger *logger.Logger, products *sync.ProductEngine, orders *sync.OrderEngine, publisher EventPublisher, pageDelay time.Duration) *SyncHandler {
	return &SyncHandler{
		db:        db,
		logger:    logger,
		products:  products,
		orders:    orders,
		publisher: publisher,
		NewClient: func(shopDomain, accessToken string) *shopify.Client {
			client := shopify.NewClient(shopDomain, accessToken, logger)
			client.PageDelay = pageDelay
			return client
		},
	}
}

type credentials struct {
	ShopDomain  string `json:"shop_domain"`
	AccessToken string `json:"access_token"`
}

// resolveCredentials prefers the request body and falls back to the saved
// store connection.
func (h *SyncHandler) resolveCredentials(body credentials) (string, string, error) {
	if body.ShopDomain != "" && body.AccessToken != "" {
		return body.ShopDomain, body.AccessToken, nil
	}

	var conn models.StoreConnection
	if err := h.db.Order("connected_at DESC").Take(&conn).Error; err != nil {
		return "", "", errors.New("no credentials supplied and no store connected")
	}
	return conn.ShopDomain, conn.AccessToken, nil
}

// SyncProducts runs a full catalog refresh.
func (h *SyncHandler) SyncProducts(c *gin.Context) {
	var body credentials
	_ = c.ShouldBindJSON(&body)
	h.runProductSync(c, body)
}

func (h *SyncHandler) runProductSync(c *gin.Context, body credentials) {
	shopDomain, accessToken, err := h.resolveCredentials(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := h.NewClient(shopDomain, accessToken)
	result, err := h.products.SyncProducts(client)
	if err != nil {
		h.respondRemoteError(c, "Failed to sync products", err)
		return
	}

	h.publish("products.synced", shopDomain, result)
	c.JSON(http.StatusOK, gin.H{"data": result})
}

type orderSyncBody struct {
	credentials
	Since    string `json:"since"`
	FetchAll bool   `json:"fetch_all"`
}

// SyncOrders runs an incremental order sync. A run already in flight is
// reported as a conflict, not queued.
func (h *SyncHandler) SyncOrders(c *gin.Context) {
	var body orderSyncBody
	_ = c.ShouldBindJSON(&body)
	h.runOrderSync(c, body)
}

func (h *SyncHandler) runOrderSync(c *gin.Context, body orderSyncBody) {
	shopDomain, accessToken, err := h.resolveCredentials(body.credentials)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := sync.OrderSyncOptions{FetchAll: body.FetchAll}
	if body.Since != "" {
		since, err := time.Parse(time.RFC3339, body.Since)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be RFC3339"})
			return
		}
		opts.Since = since
	}

	client := h.NewClient(shopDomain, accessToken)
	result, err := h.orders.SyncOrders(client, opts)
	if err != nil {
		h.respondRemoteError(c, "Failed to sync orders", err)
		return
	}
	if result.AlreadyRunning {
		c.JSON(http.StatusConflict, gin.H{"status": "processing", "error": "Order sync already running"})
		return
	}

	h.publish("orders.synced", shopDomain, result)
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// Status reports the order sync engine state.
func (h *SyncHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.orders.Status().Snapshot()})
}

func (h *SyncHandler) publish(eventType, shopDomain string, result interface{}) {
	if h.publisher == nil {
		return
	}
	h.publisher.PublishSyncEvent(events.SyncEvent{
		Type:       eventType,
		ShopDomain: shopDomain,
		Result:     result,
	})
}

// respondRemoteError maps remote API failures to 502 with the upstream
// status attached; everything else is a plain 500.
func (h *SyncHandler) respondRemoteError(c *gin.Context, msg string, err error) {
	h.logger.Error("%s: %v", msg, err)

	var apiErr *shopify.APIError
	if errors.As(err, &apiErr) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":         msg,
			"remote_status": apiErr.StatusCode,
			"remote_body":   apiErr.Body,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
