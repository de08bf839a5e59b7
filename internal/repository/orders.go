package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

// MemoryOrderRepository implements OrderRepository in process memory.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
	seq    int
	now    func() time.Time
	logger *logging.LoggerV2
}

// NewMemoryOrderRepository creates a repository holding seed. New orders are
// numbered after the seeded ones.
func NewMemoryOrderRepository(logger *logging.LoggerV2, seed ...*models.Order) *MemoryOrderRepository {
	r := &MemoryOrderRepository{
		orders: make(map[string]*models.Order, len(seed)),
		now:    time.Now,
		logger: logger,
	}
	for _, o := range seed {
		r.orders[o.ID] = cloneOrder(o)
	}
	r.seq = len(seed)
	return r
}

func generateOrderID(seq int) string {
	return fmt.Sprintf("ORD%03d", seq)
}

// Create stores order under the next sequential ID.
func (r *MemoryOrderRepository) Create(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	id := generateOrderID(r.seq)
	for r.orders[id] != nil {
		r.seq++
		id = generateOrderID(r.seq)
	}

	now := r.now()
	order.ID = id
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	r.orders[id] = cloneOrder(order)

	r.logger.Debug("Order stored", logging.Fields{"order_id": id, "status": order.Status})
	return nil
}

// GetByID returns a copy of the order.
func (r *MemoryOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, errors.NotFoundf("order %s", id)
	}
	return cloneOrder(o), nil
}

// List returns copies of the orders on tab, newest first.
func (r *MemoryOrderRepository) List(ctx context.Context, tab models.OrderTab) ([]*models.Order, error) {
	r.mu.RLock()
	out := make([]*models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if tab.Includes(o.Status) {
			out = append(out, cloneOrder(o))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// FindByIdempotencyKey returns a copy of the order sessionID placed with key.
func (r *MemoryOrderRepository) FindByIdempotencyKey(ctx context.Context, sessionID, key string) (*models.Order, error) {
	if key == "" {
		return nil, errors.NotFoundf("order for empty idempotency key")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.SessionID == sessionID && o.IdempotencyKey == key {
			return cloneOrder(o), nil
		}
	}
	return nil, errors.NotFoundf("order for idempotency key %s", key)
}

// Update applies fn under the repository lock.
func (r *MemoryOrderRepository) Update(ctx context.Context, id string, fn func(*models.Order) error) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.orders[id]
	if !ok {
		return nil, errors.NotFoundf("order %s", id)
	}

	next := cloneOrder(current)
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID = id
	next.UpdatedAt = r.now()
	r.orders[id] = next
	return cloneOrder(next), nil
}

func cloneOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.OrderItem(nil), o.Items...)
	return &c
}

var _ OrderRepository = (*MemoryOrderRepository)(nil)
