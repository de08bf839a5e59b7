package events

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:            "ORD003",
		SessionID:     "sess-1",
		Status:        models.OrderStatusConfirmed,
		PaymentMethod: models.PaymentMethodUPI,
	}
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestKafkaPublisher_PublishOrderPlaced(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, topic: "orders", logger: logging.NewNop()}
	ctx := middleware.ContextWithRequestID(context.Background(), "req-9")

	require.NoError(t, p.PublishOrderPlaced(ctx, sampleOrder()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "ORD003", string(msg.Key))
	assert.Equal(t, string(EventTypeOrderPlaced), header(msg, "event_type"))

	var event OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, EventTypeOrderPlaced, event.Type)
	assert.Equal(t, "req-9", event.CorrelationID)
	assert.Equal(t, "sess-1", event.SessionID)
	assert.Equal(t, event.ID, header(msg, "event_id"))
	assert.Len(t, event.ID, 36)

	var order models.Order
	require.NoError(t, json.Unmarshal(event.Data, &order))
	assert.Equal(t, "ORD003", order.ID)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_StatusChangedPayload(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, topic: "orders", logger: logging.NewNop()}
	order := sampleOrder()
	order.Status = models.OrderStatusShipped

	require.NoError(t, p.PublishOrderStatusChanged(context.Background(), order, models.OrderStatusProcessing))

	var event OrderEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &event))
	var change StatusChange
	require.NoError(t, json.Unmarshal(event.Data, &change))
	assert.Equal(t, models.OrderStatusProcessing, change.PreviousStatus)
	assert.Equal(t, models.OrderStatusShipped, change.Status)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: stderrors.New("broker down")}
	p := &KafkaPublisher{writer: w, topic: "orders", logger: logging.NewNop()}

	err := p.PublishOrderCancelled(context.Background(), sampleOrder(), "customer request")
	assert.EqualError(t, err, "broker down")
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(logging.NewNop())
	order := sampleOrder()

	assert.NoError(t, p.PublishOrderPlaced(context.Background(), order))
	assert.NoError(t, p.PublishOrderStatusChanged(context.Background(), order, models.OrderStatusConfirmed))
	assert.NoError(t, p.PublishOrderCancelled(context.Background(), order, "x"))
}

func TestMockEventPublisher(t *testing.T) {
	m := NewMockEventPublisher()
	order := sampleOrder()

	require.NoError(t, m.PublishOrderPlaced(context.Background(), order))
	require.NoError(t, m.PublishOrderCancelled(context.Background(), order, "x"))
	assert.Equal(t, []EventType{EventTypeOrderPlaced, EventTypeOrderCancelled}, m.Types())

	m.Err = stderrors.New("nope")
	assert.Error(t, m.PublishOrderPlaced(context.Background(), order))
	assert.Len(t, m.Types(), 2)
}

type fakeUpdater struct {
	mu    sync.Mutex
	calls []models.UpdateStatusRequest
	ids   []string
	ctxs  []context.Context
	err   error
}

func (f *fakeUpdater) UpdateStatus(ctx context.Context, id string, req models.UpdateStatusRequest) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	f.ids = append(f.ids, id)
	f.ctxs = append(f.ctxs, ctx)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Order{ID: id, Status: models.OrderStatus(req.Status)}, nil
}

func statusMessage(t *testing.T, orderID string, status models.OrderStatus) kafka.Message {
	t.Helper()
	data, err := json.Marshal(StatusChange{Status: status, Reason: "courier scan"})
	require.NoError(t, err)
	value, err := json.Marshal(OrderEvent{
		ID:            "evt-1",
		Type:          EventTypeOrderStatusChanged,
		OrderID:       orderID,
		Data:          data,
		Timestamp:     time.Now(),
		CorrelationID: "corr-7",
	})
	require.NoError(t, err)
	return kafka.Message{Topic: "fulfilment", Value: value}
}

func TestKafkaConsumer_HandleStatusChanged(t *testing.T) {
	u := &fakeUpdater{}
	c := &KafkaConsumer{orders: u, logger: logging.NewNop(), stopCh: make(chan struct{})}

	c.handleMessage(context.Background(), statusMessage(t, "ORD002", models.OrderStatusShipped))

	require.Len(t, u.calls, 1)
	assert.Equal(t, "ORD002", u.ids[0])
	assert.Equal(t, "shipped", u.calls[0].Status)
	assert.Equal(t, "courier scan", u.calls[0].Reason)
	assert.Equal(t, "corr-7", middleware.RequestIDFromContext(u.ctxs[0]))
}

func TestKafkaConsumer_IgnoresOtherEvents(t *testing.T) {
	u := &fakeUpdater{}
	c := &KafkaConsumer{orders: u, logger: logging.NewNop(), stopCh: make(chan struct{})}

	value, _ := json.Marshal(OrderEvent{ID: "e", Type: EventTypeOrderPlaced, OrderID: "ORD003"})
	c.handleMessage(context.Background(), kafka.Message{Value: value})
	c.handleMessage(context.Background(), kafka.Message{Value: []byte("not json")})

	assert.Empty(t, u.calls)
}

func TestKafkaConsumer_UpdateFailureIsLogged(t *testing.T) {
	u := &fakeUpdater{err: errors.NotFoundf("order %s", "ORD404")}
	c := &KafkaConsumer{orders: u, logger: logging.NewNop(), stopCh: make(chan struct{})}

	err := c.handleStatusChanged(context.Background(), &OrderEvent{
		ID:      "e",
		Type:    EventTypeOrderStatusChanged,
		OrderID: "ORD404",
		Data:    json.RawMessage(`{"status":"shipped"}`),
	})
	assert.True(t, errors.IsNotFound(err))
}

type chanReader struct {
	msgs   chan kafka.Message
	closed chan struct{}
	once   sync.Once
}

func (r *chanReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case <-r.closed:
		return kafka.Message{}, stderrors.New("reader closed")
	case m := <-r.msgs:
		return m, nil
	}
}

func (r *chanReader) Close() error {
	r.once.Do(func() { close(r.closed) })
	return nil
}

func TestKafkaConsumer_StartAndStop(t *testing.T) {
	u := &fakeUpdater{}
	r := &chanReader{msgs: make(chan kafka.Message, 1), closed: make(chan struct{})}
	c := &KafkaConsumer{reader: r, orders: u, logger: logging.NewNop(), stopCh: make(chan struct{})}

	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background()) }()

	r.msgs <- statusMessage(t, "ORD002", models.OrderStatusShipped)
	require.Eventually(t, func() bool {
		u.mu.Lock()
		defer u.mu.Unlock()
		return len(u.calls) == 1
	}, time.Second, 10*time.Millisecond)

	c.Stop()
	c.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}
