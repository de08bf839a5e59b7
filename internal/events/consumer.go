package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

// StatusUpdater applies a fulfilment status change to an order.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, orderID string, req models.UpdateStatusRequest) (*models.Order, error)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaConsumer consumes fulfilment status events from Kafka.
type KafkaConsumer struct {
	reader   messageReader
	orders   StatusUpdater
	logger   *logging.LoggerV2
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewKafkaConsumer creates a new Kafka-based event consumer.
func NewKafkaConsumer(cfg config.KafkaConfig, orders StatusUpdater, logger *logging.LoggerV2) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.StatusTopic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})

	return &KafkaConsumer{
		reader: reader,
		orders: orders,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start consumes events until ctx is done or Stop is called.
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
				select {
				case <-c.stopCh:
					c.logger.Info("Kafka consumer stopped")
					return nil
				default:
				}
				c.logger.Error("Failed to read message", logging.Fields{"error": err.Error()})
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// Stop stops the consumer.
func (c *KafkaConsumer) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.reader.Close(); err != nil {
			c.logger.Warn("Closing Kafka reader failed", logging.Fields{"error": err.Error()})
		}
	})
}

func (c *KafkaConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("Received message", logging.Fields{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	var event OrderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		metrics.ObserveEventConsumed("malformed", err)
		c.logger.Error("Failed to unmarshal event", logging.Fields{"error": err.Error()})
		return
	}

	switch event.Type {
	case EventTypeOrderStatusChanged:
		err := c.handleStatusChanged(ctx, &event)
		metrics.ObserveEventConsumed(string(event.Type), err)
	default:
		c.logger.Debug("Ignoring unknown event type", logging.Fields{"type": event.Type})
	}
}

func (c *KafkaConsumer) handleStatusChanged(ctx context.Context, event *OrderEvent) error {
	var change StatusChange
	if err := json.Unmarshal(event.Data, &change); err != nil {
		c.logger.Error("Failed to unmarshal status change", logging.Fields{
			"event_id": event.ID,
			"error":    err.Error(),
		})
		return err
	}

	c.logger.Info("Handling order status changed event", logging.Fields{
		"event_id": event.ID,
		"order_id": event.OrderID,
		"status":   change.Status,
	})

	if event.CorrelationID != "" {
		ctx = middleware.ContextWithRequestID(ctx, event.CorrelationID)
	}

	_, err := c.orders.UpdateStatus(ctx, event.OrderID, models.UpdateStatusRequest{
		Status: string(change.Status),
		Reason: change.Reason,
	})
	if err != nil {
		fields := logging.Fields{"order_id": event.OrderID, "error": err.Error()}
		if _, invalid := errors.AsValidation(err); invalid || errors.IsNotFound(err) {
			c.logger.Warn("Status event not applied", fields)
		} else {
			c.logger.Error("Failed to update order status", fields)
		}
	}
	return err
}
