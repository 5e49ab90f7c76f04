package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"

	"github.com/our-cpg/planogram-backend/internal/config"
	"github.com/our-cpg/planogram-backend/internal/events"
	"github.com/our-cpg/planogram-backend/internal/logger"
	"github.com/our-cpg/planogram-backend/internal/models"
	"github.com/our-cpg/planogram-backend/internal/services/shopify"
	"github.com/our-cpg/planogram-backend/internal/sync"
)

// Worker consumes sync requests from Kafka and runs a periodic unattended
// order sync whenever a store connection has been saved.
type Worker struct {
	config    *config.Config
	logger    *logger.Logger
	db        *gorm.DB
	reader    *kafka.Reader
	publisher *events.Publisher
	products  *sync.ProductEngine
	orders    *sync.OrderEngine

	stop chan struct{}
}

func New(cfg *config.Config, logger *logger.Logger, db *gorm.DB, publisher *events.Publisher) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        "planogram-worker",
		Topic:          events.TopicSyncRequests,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	status := sync.NewStatus()

	return &Worker{
		config:    cfg,
		logger:    logger,
		db:        db,
		reader:    reader,
		publisher: publisher,
		products:  sync.NewProductEngine(db, logger, cfg.CostEstimateRate, cfg.MaxProductRecords),
		orders:    sync.NewOrderEngine(db, logger, status, cfg.MaxOrderPages),
		stop:      make(chan struct{}),
	}
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, listening for sync requests...")

	go w.runTicker()

	for {
		select {
		case <-w.stop:
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		message, err := w.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		var request events.SyncRequest
		if err := json.Unmarshal(message.Value, &request); err != nil {
			w.logger.Error("Failed to parse sync request: %v", err)
			continue
		}

		w.handleRequest(request)
	}
}

func (w *Worker) runTicker() {
	interval := time.Duration(w.config.SyncIntervalMins) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.handleRequest(events.SyncRequest{Type: "orders"})
		}
	}
}

func (w *Worker) handleRequest(request events.SyncRequest) {
	client, shopDomain, err := w.clientFor(request.ShopDomain)
	if err != nil {
		w.logger.Debug("Skipping %s sync: %v", request.Type, err)
		return
	}

	switch request.Type {
	case "products":
		result, err := w.products.SyncProducts(client)
		if err != nil {
			w.logger.Error("Unattended product sync failed: %v", err)
			return
		}
		w.publisher.PublishSyncEvent(events.SyncEvent{
			Type:       "products.synced",
			ShopDomain: shopDomain,
			Result:     result,
		})

	case "orders":
		result, err := w.orders.SyncOrders(client, sync.OrderSyncOptions{})
		if err != nil {
			w.logger.Error("Unattended order sync failed: %v", err)
			return
		}
		if result.AlreadyRunning {
			w.logger.Debug("Order sync already running, request dropped")
			return
		}
		w.publisher.PublishSyncEvent(events.SyncEvent{
			Type:       "orders.synced",
			ShopDomain: shopDomain,
			Result:     result,
		})

	default:
		w.logger.Error("Unknown sync request type: %s", request.Type)
	}
}

// clientFor builds a remote client from the saved store connection; a shop
// domain in the request selects between multiple saved stores.
func (w *Worker) clientFor(shopDomain string) (*shopify.Client, string, error) {
	query := w.db.Order("connected_at DESC")
	if shopDomain != "" {
		query = query.Where("shop_domain = ?", shopDomain)
	}

	var conn models.StoreConnection
	if err := query.Take(&conn).Error; err != nil {
		return nil, "", err
	}

	client := shopify.NewClient(conn.ShopDomain, conn.AccessToken, w.logger)
	client.PageDelay = time.Duration(w.config.PageDelayMs) * time.Millisecond
	return client, conn.ShopDomain, nil
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	close(w.stop)
	w.reader.Close()
}
