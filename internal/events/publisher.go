package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/paperkart/paperkart-sales-service/internal/config"
	"github.com/paperkart/paperkart-sales-service/internal/metrics"
	"github.com/paperkart/paperkart-sales-service/internal/models"
)

// EventType represents the type of order event.
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderCancelled     EventType = "order.cancelled"
)

// OrderEvent represents an order-related event on the orders topic.
type OrderEvent struct {
	ID         string          `json:"id"`
	Type       EventType       `json:"type"`
	OrderID    string          `json:"order_id"`
	CustomerID string          `json:"customer_id"`
	Data       json.RawMessage `json:"data"`
	Timestamp  time.Time       `json:"timestamp"`
}

// OrderEventPublisher publishes order lifecycle events.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.SalesOrder) error
	PublishOrderStatusChanged(ctx context.Context, order *models.SalesOrder, previousStatus models.OrderStatus) error
	PublishOrderCancelled(ctx context.Context, order *models.SalesOrder, reason string) error
	Close() error
}

// KafkaPublisher publishes order events to Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
	logger *zap.Logger
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		topic:  cfg.OrdersTopic,
		logger: logger.Named("event-publisher"),
	}
}

// PublishOrderCreated publishes an order created event carrying the full
// priced order.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *models.SalesOrder) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	event := newOrderEvent(EventTypeOrderCreated, order, data)
	return p.publish(ctx, event)
}

// PublishOrderStatusChanged publishes an order status change event.
func (p *KafkaPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.SalesOrder, previousStatus models.OrderStatus) error {
	payload := struct {
		Order          *models.SalesOrder `json:"order"`
		PreviousStatus models.OrderStatus `json:"previous_status"`
		NewStatus      models.OrderStatus `json:"new_status"`
	}{
		Order:          order,
		PreviousStatus: previousStatus,
		NewStatus:      order.Status,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	event := newOrderEvent(EventTypeOrderStatusChanged, order, data)
	return p.publish(ctx, event)
}

// PublishOrderCancelled publishes an order cancellation event.
func (p *KafkaPublisher) PublishOrderCancelled(ctx context.Context, order *models.SalesOrder, reason string) error {
	payload := struct {
		Order  *models.SalesOrder `json:"order"`
		Reason string             `json:"reason"`
	}{
		Order:  order,
		Reason: reason,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	event := newOrderEvent(EventTypeOrderCancelled, order, data)
	return p.publish(ctx, event)
}

func newOrderEvent(eventType EventType, order *models.SalesOrder, data []byte) *OrderEvent {
	return &OrderEvent{
		ID:         "evt_" + uuid.NewString(),
		Type:       eventType,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Data:       data,
		Timestamp:  time.Now(),
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, event *OrderEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		metrics.EventsPublished.WithLabelValues(string(event.Type), "error").Inc()
		p.logger.Error("Failed to publish event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
		return err
	}

	metrics.EventsPublished.WithLabelValues(string(event.Type), "ok").Inc()
	p.logger.Info("Event published",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("order_id", event.OrderID),
	)

	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	return p.writer.Close()
}

// MockEventPublisher records events for testing.
type MockEventPublisher struct {
	Events []*OrderEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		Events: make([]*OrderEvent, 0),
	}
}

func (m *MockEventPublisher) PublishOrderCreated(ctx context.Context, order *models.SalesOrder) error {
	m.Events = append(m.Events, &OrderEvent{Type: EventTypeOrderCreated, OrderID: order.ID})
	return nil
}

func (m *MockEventPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.SalesOrder, previousStatus models.OrderStatus) error {
	m.Events = append(m.Events, &OrderEvent{Type: EventTypeOrderStatusChanged, OrderID: order.ID})
	return nil
}

func (m *MockEventPublisher) PublishOrderCancelled(ctx context.Context, order *models.SalesOrder, reason string) error {
	m.Events = append(m.Events, &OrderEvent{Type: EventTypeOrderCancelled, OrderID: order.ID})
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }
