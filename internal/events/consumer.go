package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/paperkart/paperkart-sales-service/internal/config"
	"github.com/paperkart/paperkart-sales-service/internal/repository"
)

// CustomerEventType represents the type of customer master event.
type CustomerEventType string

const (
	CustomerEventRateUpdated   CustomerEventType = "customer.rate_updated"
	CustomerEventCreditBlocked CustomerEventType = "customer.credit_blocked"
	CustomerEventCreditCleared CustomerEventType = "customer.credit_cleared"
)

// CustomerEvent is an event on the customer masters topic.
type CustomerEvent struct {
	ID              string            `json:"id"`
	Type            CustomerEventType `json:"type"`
	CustomerID      string            `json:"customer_id"`
	BenchmarkRate44 float64           `json:"benchmark_rate_44,omitempty"`
	Timestamp       time.Time         `json:"timestamp"`
}

// KafkaConsumer consumes customer master events. Rate changes invalidate the
// benchmark-rate cache so the next quote prices off the fresh rate; credit
// changes take effect lazily through the credit gate on the next order.
type KafkaConsumer struct {
	reader    *kafka.Reader
	rateCache repository.RateCache
	logger    *zap.Logger
	stopCh    chan struct{}
}

// NewKafkaConsumer creates a new Kafka-based event consumer.
func NewKafkaConsumer(cfg config.KafkaConfig, rateCache repository.RateCache, logger *zap.Logger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.CustomersTopic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})

	return &KafkaConsumer{
		reader:    reader,
		rateCache: rateCache,
		logger:    logger.Named("event-consumer"),
		stopCh:    make(chan struct{}),
	}
}

// Start begins consuming events until the context is cancelled or Stop is
// called.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info("Starting Kafka consumer")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("Kafka consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Error("Failed to read message", zap.Error(err))
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// Stop stops the consumer.
func (c *KafkaConsumer) Stop() {
	close(c.stopCh)
	c.reader.Close()
}

func (c *KafkaConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("Received message",
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
	)

	var event CustomerEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	switch event.Type {
	case CustomerEventRateUpdated:
		c.handleRateUpdated(ctx, &event)
	case CustomerEventCreditBlocked, CustomerEventCreditCleared:
		// Credit standing is re-read from the customer service on the next
		// order; nothing to do here beyond the audit trail.
		c.logger.Info("Customer credit standing changed",
			zap.String("customer_id", event.CustomerID),
			zap.String("type", string(event.Type)),
		)
	default:
		c.logger.Debug("Ignoring unknown event type", zap.String("type", string(event.Type)))
	}
}

func (c *KafkaConsumer) handleRateUpdated(ctx context.Context, event *CustomerEvent) {
	c.logger.Info("Handling benchmark rate update",
		zap.String("customer_id", event.CustomerID),
		zap.Float64("benchmark_rate_44", event.BenchmarkRate44),
	)

	if err := c.rateCache.Invalidate(ctx, event.CustomerID); err != nil {
		c.logger.Error("Failed to invalidate cached rate",
			zap.String("customer_id", event.CustomerID),
			zap.Error(err),
		)
	}
}
