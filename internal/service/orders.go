package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/cart"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/catalog"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/pricing"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/repository"
)

var errStatusUnchanged = stderrors.New("status unchanged")

// SkippedLine is an order line Reorder could not put back in the cart.
type SkippedLine struct {
	SKU    string `json:"sku"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ReorderResult reports what Reorder added to the cart.
type ReorderResult struct {
	Added   []pricing.LineItem `json:"added"`
	Skipped []SkippedLine      `json:"skipped"`
	Cart    *CartView          `json:"cart"`
}

// OrderService handles order history and lifecycle.
type OrderService struct {
	orders    repository.OrderRepository
	carts     *CartService
	catalog   *catalog.Catalog
	publisher events.Publisher
	logger    *logging.LoggerV2
}

// NewOrderService creates a new order service.
func NewOrderService(orders repository.OrderRepository, carts *CartService, cat *catalog.Catalog, publisher events.Publisher) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		catalog:   cat,
		publisher: publisher,
		logger:    logging.NewLoggerV2("order-service"),
	}
}

// GetOrder retrieves an order by ID.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	s.logger.Debug("Getting order", logging.Fields{"order_id": id})
	return s.orders.GetByID(ctx, id)
}

// ListOrders returns the orders on a history tab, newest first.
func (s *OrderService) ListOrders(ctx context.Context, tab string) ([]*models.Order, error) {
	t, err := models.ParseOrderTab(tab)
	if err != nil {
		return nil, err
	}
	return s.orders.List(ctx, t)
}

// UpdateStatus moves an order along its lifecycle. Repeating the current
// status is accepted and changes nothing.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, req models.UpdateStatusRequest) (*models.Order, error) {
	status, err := ValidateUpdateStatusRequest(&req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Updating order status", logging.Fields{
		"order_id":   id,
		"new_status": status,
	})

	var previous models.OrderStatus
	order, err := s.orders.Update(ctx, id, func(o *models.Order) error {
		previous = o.Status
		if o.Status == status {
			return errStatusUnchanged
		}
		if !o.Status.CanTransition(status) {
			return errors.NewValidationError("status", fmt.Sprintf(
				"invalid status transition from %s to %s",
				o.Status,
				status,
			))
		}
		o.Status = status
		return nil
	})
	if stderrors.Is(err, errStatusUnchanged) {
		return s.orders.GetByID(ctx, id)
	}
	metrics.ObserveStatusTransition(string(status), err)
	if err != nil {
		return nil, err
	}

	if status == models.OrderStatusCancelled {
		err = s.publisher.PublishOrderCancelled(ctx, order, SanitizeReason(req.Reason))
	} else {
		err = s.publisher.PublishOrderStatusChanged(ctx, order, previous)
	}
	if err != nil {
		s.logger.Error("Failed to publish status change event", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}

	return order, nil
}

// CancelOrder cancels an order that has not shipped.
func (s *OrderService) CancelOrder(ctx context.Context, id, reason string) (*models.Order, error) {
	return s.UpdateStatus(ctx, id, models.UpdateStatusRequest{
		Status: string(models.OrderStatusCancelled),
		Reason: reason,
	})
}

// Reorder puts an order's lines back into the session's cart at current
// catalog prices. Lines whose product is gone or whose quantity no longer
// fits are skipped and reported.
func (s *OrderService) Reorder(ctx context.Context, sessionID, id string) (*ReorderResult, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &ReorderResult{Added: []pricing.LineItem{}, Skipped: []SkippedLine{}}
	lines := make([]pricing.LineItem, 0, len(order.Items))
	for _, it := range order.Items {
		line, err := s.catalog.QuoteLine(it.SKU, it.Quantity)
		switch {
		case errors.IsNotFound(err):
			result.Skipped = append(result.Skipped, SkippedLine{SKU: it.SKU, Name: it.Name, Reason: "no longer available"})
		case err != nil:
			result.Skipped = append(result.Skipped, SkippedLine{SKU: it.SKU, Name: it.Name, Reason: err.Error()})
		default:
			lines = append(lines, line)
		}
	}

	err = s.carts.withCart(sessionID, func(c *cart.Cart) error {
		for _, line := range lines {
			item, applied := c.Add(line)
			metrics.ObserveLineAdded(metrics.LineSourceReorder, applied)
			if !applied {
				result.Skipped = append(result.Skipped, SkippedLine{SKU: line.SKU, Reason: "quantity limit reached"})
				continue
			}
			result.Added = append(result.Added, item)
		}
		v, err := s.carts.view(c)
		result.Cart = v
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order reordered", logging.Fields{
		"order_id":   id,
		"session_id": sessionID,
		"added":      len(result.Added),
		"skipped":    len(result.Skipped),
	})
	return result, nil
}
