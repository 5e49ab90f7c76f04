package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/our-cpg/planogram-backend/internal/logger"
)

// Topics for sync coordination. The API publishes results; the worker
// consumes requests.
const (
	TopicSyncEvents   = "sync-events"
	TopicSyncRequests = "sync-requests"
)

// SyncEvent is the result summary emitted after each sync run.
type SyncEvent struct {
	Type       string      `json:"type"`
	ShopDomain string      `json:"shop_domain"`
	Result     interface{} `json:"result"`
	Timestamp  time.Time   `json:"timestamp"`
}

// SyncRequest asks the worker to run a sync out of band.
type SyncRequest struct {
	Type       string `json:"type"` // "products" or "orders"
	ShopDomain string `json:"shop_domain"`
}

// Publisher writes sync events to Kafka. Publishing is best effort: a
// broker outage must never fail the sync that produced the event.
type Publisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewPublisher(brokers string, logger *logger.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        TopicSyncEvents,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}
}

func (p *Publisher) PublishSyncEvent(event SyncEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal sync event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ShopDomain),
		Value: value,
	})
	if err != nil {
		p.logger.Error("Failed to publish sync event: %v", err)
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
