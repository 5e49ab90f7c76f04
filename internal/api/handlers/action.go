package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/our-cpg/planogram-backend/internal/analytics"
	"github.com/our-cpg/planogram-backend/internal/logger"
	"github.com/our-cpg/planogram-backend/internal/models"
)

// ActionHandler serves the legacy single-path dispatch endpoint the client
// app speaks. Each action tag maps to its own request type with its own
// required fields, validated before dispatch; there is no shape-free
// branching on loose maps.
type ActionHandler struct {
	db        *gorm.DB
	logger    *logger.Logger
	sync      *SyncHandler
	utcOffset int
}

func NewActionHandler(db *gorm.DB, logger *logger.Logger, sync *SyncHandler, utcOffset int) *ActionHandler {
	return &ActionHandler{
		db:        db,
		logger:    logger,
		sync:      sync,
		utcOffset: utcOffset,
	}
}

type connectRequest struct {
	ShopDomain  string `json:"shop_domain"`
	AccessToken string `json:"access_token"`
}

type productLookupRequest struct {
	Barcode string `json:"barcode"`
}

type correlationsRequest struct {
	VariantID string `json:"variant_id"`
	Limit     int    `json:"limit"`
}

// Dispatch decodes the action tag and routes to the matching typed request.
func (h *ActionHandler) Dispatch(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	var envelope struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Action == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
		return
	}

	switch envelope.Action {
	case "connect":
		var req connectRequest
		if err := json.Unmarshal(raw, &req); err != nil || req.ShopDomain == "" || req.AccessToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "shop_domain and access_token are required"})
			return
		}
		h.connect(c, req)

	case "refresh_products":
		var req credentials
		if err := json.Unmarshal(raw, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		h.sync.runProductSync(c, req)

	case "refresh_orders":
		var req orderSyncBody
		if err := json.Unmarshal(raw, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		h.sync.runOrderSync(c, req)

	case "analytics":
		stats, err := analytics.ComputeSalesStats(h.db, time.Now(), h.utcOffset)
		if err != nil {
			h.logger.Error("Failed to compute sales stats: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": stats})

	case "product_lookup":
		var req productLookupRequest
		if err := json.Unmarshal(raw, &req); err != nil || req.Barcode == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "barcode is required"})
			return
		}
		lookup, err := analytics.LookupByBarcode(h.db, req.Barcode, defaultCorrelationLimit)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			h.logger.Error("Barcode lookup failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up product"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": lookup})

	case "correlations":
		var req correlationsRequest
		if err := json.Unmarshal(raw, &req); err != nil || req.VariantID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "variant_id is required"})
			return
		}
		if req.Limit <= 0 {
			req.Limit = 10
		}
		correlated, err := analytics.CorrelatedFor(h.db, req.VariantID, req.Limit)
		if err != nil {
			h.logger.Error("Failed to fetch correlations: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch correlations"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": correlated})

	case "sync_status":
		c.JSON(http.StatusOK, gin.H{"data": h.sync.orders.Status().Snapshot()})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown action: " + envelope.Action})
	}
}

// connect verifies the credential pair against the shop endpoint and saves
// the connection for unattended syncs. Only the opaque token is kept; there
// is no OAuth dance here.
func (h *ActionHandler) connect(c *gin.Context, req connectRequest) {
	client := h.sync.NewClient(req.ShopDomain, req.AccessToken)
	shopInfo, err := client.GetShopInfo()
	if err != nil {
		h.sync.respondRemoteError(c, "Failed to verify store credentials", err)
		return
	}

	conn := models.StoreConnection{
		ShopDomain:  req.ShopDomain,
		AccessToken: req.AccessToken,
		ShopName:    shopInfo.Name,
		Currency:    shopInfo.Currency,
		Timezone:    shopInfo.IanaTimezone,
		ConnectedAt: time.Now(),
	}
	err = h.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_domain"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token", "shop_name", "currency", "timezone",
			"connected_at", "updated_at",
		}),
	}).Create(&conn).Error
	if err != nil {
		h.logger.Error("Failed to save store connection: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save store connection"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Store connected",
		"shop_name": shopInfo.Name,
		"currency":  shopInfo.Currency,
		"timezone":  shopInfo.IanaTimezone,
	})
}
