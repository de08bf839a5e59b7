// Package events publishes order lifecycle events to Kafka and consumes
// fulfilment status updates from it.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

// EventType represents the type of order event.
type EventType string

const (
	EventTypeOrderPlaced        EventType = "order.placed"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderCancelled     EventType = "order.cancelled"
)

// OrderEvent is the envelope written to and read from the order topics.
type OrderEvent struct {
	ID            string            `json:"id"`
	Type          EventType         `json:"type"`
	OrderID       string            `json:"order_id"`
	SessionID     string            `json:"session_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
	CorrelationID string            `json:"correlation_id,omitempty"`
}

// StatusChange is the payload of order.status_changed events.
type StatusChange struct {
	PreviousStatus models.OrderStatus `json:"previous_status,omitempty"`
	Status         models.OrderStatus `json:"status"`
	Reason         string             `json:"reason,omitempty"`
}

// Publisher emits order lifecycle events.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, order *models.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) error
	PublishOrderCancelled(ctx context.Context, order *models.Order, reason string) error
}

func newEvent(ctx context.Context, eventType EventType, order *models.Order, payload interface{}) (*OrderEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OrderEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		OrderID:       order.ID,
		SessionID:     order.SessionID,
		Data:          data,
		Metadata:      map[string]string{"source": "storefront-service"},
		Timestamp:     time.Now().UTC(),
		CorrelationID: middleware.RequestIDFromContext(ctx),
	}, nil
}

func placedEvent(ctx context.Context, order *models.Order) (*OrderEvent, error) {
	return newEvent(ctx, EventTypeOrderPlaced, order, order)
}

func statusChangedEvent(ctx context.Context, order *models.Order, previous models.OrderStatus) (*OrderEvent, error) {
	return newEvent(ctx, EventTypeOrderStatusChanged, order, StatusChange{PreviousStatus: previous, Status: order.Status})
}

func cancelledEvent(ctx context.Context, order *models.Order, reason string) (*OrderEvent, error) {
	return newEvent(ctx, EventTypeOrderCancelled, order, StatusChange{Status: order.Status, Reason: reason})
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes order events to Kafka.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *logging.LoggerV2
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *logging.LoggerV2) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrderEventsTopic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		topic:  cfg.OrderEventsTopic,
		logger: logger,
	}
}

// PublishOrderPlaced publishes an order placed event.
func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, order *models.Order) error {
	p.logger.Debug("Publishing order placed event", logging.Fields{"order_id": order.ID})

	event, err := placedEvent(ctx, order)
	if err != nil {
		return err
	}
	return p.publish(ctx, event)
}

// PublishOrderStatusChanged publishes an order status change event.
func (p *KafkaPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) error {
	p.logger.Debug("Publishing order status changed event", logging.Fields{
		"order_id":        order.ID,
		"previous_status": previous,
		"new_status":      order.Status,
	})

	event, err := statusChangedEvent(ctx, order, previous)
	if err != nil {
		return err
	}
	return p.publish(ctx, event)
}

// PublishOrderCancelled publishes an order cancellation event.
func (p *KafkaPublisher) PublishOrderCancelled(ctx context.Context, order *models.Order, reason string) error {
	p.logger.Debug("Publishing order cancelled event", logging.Fields{
		"order_id": order.ID,
		"reason":   reason,
	})

	event, err := cancelledEvent(ctx, order, reason)
	if err != nil {
		return err
	}
	return p.publish(ctx, event)
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

	err = p.writer.WriteMessages(ctx, msg)
	metrics.ObserveEventPublished(string(event.Type), err)
	if err != nil {
		p.logger.Error("Failed to publish event", logging.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"order_id":   event.OrderID,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Info("Event published", logging.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"order_id":   event.OrderID,
		"topic":      p.topic,
	})
	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	return p.writer.Close()
}

// LogPublisher writes events to the log instead of a broker. Used when order
// events are disabled.
type LogPublisher struct {
	logger *logging.LoggerV2
}

func NewLogPublisher(logger *logging.LoggerV2) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) log(event *OrderEvent) {
	metrics.ObserveEventPublished(string(event.Type), nil)
	p.logger.Info("Order event", logging.Fields{
		"event_id":       event.ID,
		"event_type":     event.Type,
		"order_id":       event.OrderID,
		"correlation_id": event.CorrelationID,
	})
}

func (p *LogPublisher) PublishOrderPlaced(ctx context.Context, order *models.Order) error {
	event, err := placedEvent(ctx, order)
	if err != nil {
		return err
	}
	p.log(event)
	return nil
}

func (p *LogPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) error {
	event, err := statusChangedEvent(ctx, order, previous)
	if err != nil {
		return err
	}
	p.log(event)
	return nil
}

func (p *LogPublisher) PublishOrderCancelled(ctx context.Context, order *models.Order, reason string) error {
	event, err := cancelledEvent(ctx, order, reason)
	if err != nil {
		return err
	}
	p.log(event)
	return nil
}

// MockEventPublisher is a mock implementation for testing.
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []*OrderEvent
	Err    error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		Events: make([]*OrderEvent, 0),
	}
}

func (m *MockEventPublisher) record(event *OrderEvent, err error) error {
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockEventPublisher) PublishOrderPlaced(ctx context.Context, order *models.Order) error {
	return m.record(placedEvent(ctx, order))
}

func (m *MockEventPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) error {
	return m.record(statusChangedEvent(ctx, order, previous))
}

func (m *MockEventPublisher) PublishOrderCancelled(ctx context.Context, order *models.Order, reason string) error {
	return m.record(cancelledEvent(ctx, order, reason))
}

// Types returns the recorded event types in publish order.
func (m *MockEventPublisher) Types() []EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EventType, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Type
	}
	return out
}

var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = (*LogPublisher)(nil)
	_ Publisher = (*MockEventPublisher)(nil)
)
