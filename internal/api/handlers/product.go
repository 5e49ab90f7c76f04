package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/our-cpg/planogram-backend/internal/analytics"
	"github.com/our-cpg/planogram-backend/internal/logger"
)

const defaultCorrelationLimit = 5

type ProductHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewProductHandler(db *gorm.DB, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{
		db:     db,
		logger: logger,
	}
}

// LookupByBarcode answers the point-of-sale scan: one variant with sales
// counters and its top correlated products. A miss is a 404, never a 500.
func (h *ProductHandler) LookupByBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	if barcode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Barcode is required"})
		return
	}

	lookup, err := analytics.LookupByBarcode(h.db, barcode, defaultCorrelationLimit)
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
}

// List returns every cached variant with its stock-out forecast.
func (h *ProductHandler) List(c *gin.Context) {
	forecasts, err := analytics.ComputeForecasts(h.db)
	if err != nil {
		h.logger.Error("Failed to compute forecasts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  forecasts,
		"count": len(forecasts),
	})
}

// Correlations lists the top co-purchase partners for a variant.
func (h *ProductHandler) Correlations(c *gin.Context) {
	variantID := c.Query("variant_id")
	if variantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "variant_id is required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 {
		limit = 10
	}

	correlated, err := analytics.CorrelatedFor(h.db, variantID, limit)
	if err != nil {
		h.logger.Error("Failed to fetch correlations: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch correlations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": correlated})
}
