package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/our-cpg/planogram-backend/internal/api/handlers"
	"github.com/our-cpg/planogram-backend/internal/api/middleware"
	"github.com/our-cpg/planogram-backend/internal/config"
	"github.com/our-cpg/planogram-backend/internal/database"
	"github.com/our-cpg/planogram-backend/internal/logger"
	"github.com/our-cpg/planogram-backend/internal/sync"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database, publisher handlers.EventPublisher) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Sync engines share one status token so the concurrency guard covers
	// every trigger path.
	status := sync.NewStatus()
	productEngine := sync.NewProductEngine(db.DB, logger, cfg.CostEstimateRate, cfg.MaxProductRecords)
	orderEngine := sync.NewOrderEngine(db.DB, logger, status, cfg.MaxOrderPages)

	// Initialize handlers
	productHandler := handlers.NewProductHandler(db.DB, logger)
	analyticsHandler := handlers.NewAnalyticsHandler(db.DB, logger, cfg.StoreUTCOffset)
	syncHandler := handlers.NewSyncHandler(db.DB, logger, productEngine, orderEngine, publisher, time.Duration(cfg.PageDelayMs)*time.Millisecond)
	actionHandler := handlers.NewActionHandler(db.DB, logger, syncHandler, cfg.StoreUTCOffset)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Action dispatch for the client app
		v1.POST("/actions", actionHandler.Dispatch)

		// Products
		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/barcode/:barcode", productHandler.LookupByBarcode)
		}

		// Analytics
		v1.GET("/stats", analyticsHandler.Stats)
		v1.GET("/correlations", productHandler.Correlations)

		// Sync
		syncGroup := v1.Group("/sync")
		{
			syncGroup.POST("/products", syncHandler.SyncProducts)
			syncGroup.POST("/orders", syncHandler.SyncOrders)
			syncGroup.GET("/status", syncHandler.Status)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// GetRouter exposes the router for tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
