package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/our-cpg/planogram-backend/internal/config"
	"github.com/our-cpg/planogram-backend/internal/database"
	"github.com/our-cpg/planogram-backend/internal/events"
	"github.com/our-cpg/planogram-backend/internal/logger"
	"github.com/our-cpg/planogram-backend/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	// Initialize event publisher
	publisher := events.NewPublisher(cfg.KafkaBrokers, logger)
	defer publisher.Close()

	// Initialize worker
	w := worker.New(cfg, logger, db.DB, publisher)

	// Start worker
	logger.Info("Starting worker...")
	go w.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	w.Stop()
}
