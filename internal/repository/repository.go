// Package repository holds the storefront's state: placed orders, per-session
// carts and checkout idempotency keys.
package repository

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

// OrderRepository stores placed orders.
type OrderRepository interface {
	// Create assigns the next order ID and stores the order.
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// List returns orders newest first, filtered to statuses on tab.
	List(ctx context.Context, tab models.OrderTab) ([]*models.Order, error)
	// FindByIdempotencyKey returns the order a session placed under key.
	FindByIdempotencyKey(ctx context.Context, sessionID, key string) (*models.Order, error)
	// Update applies fn to a copy of the order and stores the result when
	// fn returns nil.
	Update(ctx context.Context, id string, fn func(*models.Order) error) (*models.Order, error)
}

// IdempotencyStore remembers which order a checkout request key produced.
type IdempotencyStore interface {
	// TryLock claims key within scope. It returns false when the key is
	// already claimed.
	TryLock(ctx context.Context, scope, key string) (bool, error)
	// Release drops a claim so the request can be retried.
	Release(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}
