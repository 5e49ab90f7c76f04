package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/our-cpg/planogram-backend/internal/analytics"
	"github.com/our-cpg/planogram-backend/internal/logger"
)

type AnalyticsHandler struct {
	db        *gorm.DB
	logger    *logger.Logger
	utcOffset int
}

func NewAnalyticsHandler(db *gorm.DB, logger *logger.Logger, utcOffset int) *AnalyticsHandler {
	return &AnalyticsHandler{
		db:        db,
		logger:    logger,
		utcOffset: utcOffset,
	}
}

// Stats serves order count and revenue for today / this week / this month /
// this year, with window boundaries in the storefront's time zone.
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	stats, err := analytics.ComputeSalesStats(h.db, time.Now(), h.utcOffset)
	if err != nil {
		h.logger.Error("Failed to compute sales stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}
