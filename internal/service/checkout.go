package service

import (
	"context"
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

const maxIdempotencyKeyLength = 128

// CheckoutReview is what the customer confirms before placing an order.
type CheckoutReview struct {
	Items           []CartLine             `json:"items"`
	DeliveryAddress models.DeliveryAddress `json:"delivery_address"`
	PaymentMethod   models.PaymentMethod   `json:"payment_method"`
	PromoCode       string                 `json:"promo_code,omitempty"`
	Summary         pricing.PricingResult  `json:"summary"`
}

// PlacedOrder is the result of PlaceOrder. Replayed is set when the order
// was placed by an earlier request with the same idempotency key.
type PlacedOrder struct {
	Order    *models.Order `json:"order"`
	Replayed bool          `json:"replayed"`
}

// CheckoutService turns a session's cart into an order.
type CheckoutService struct {
	carts     *CartService
	catalog   *catalog.Catalog
	orders    repository.OrderRepository
	idem      repository.IdempotencyStore
	publisher events.Publisher
	policy    pricing.Policy
	logger    *logging.LoggerV2
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	carts *CartService,
	cat *catalog.Catalog,
	orders repository.OrderRepository,
	idem repository.IdempotencyStore,
	publisher events.Publisher,
	policy pricing.Policy,
) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		catalog:   cat,
		orders:    orders,
		idem:      idem,
		publisher: publisher,
		policy:    policy,
		logger:    logging.NewLoggerV2("checkout-service"),
	}
}

// PaymentMethods lists the payment options offered at checkout.
func (s *CheckoutService) PaymentMethods() []models.PaymentMethodInfo {
	return models.PaymentMethods()
}

func validatePlaceOrderRequest(req *models.PlaceOrderRequest) (models.PaymentMethod, error) {
	NormalizeDeliveryAddress(&req.DeliveryAddress)
	if err := ValidateDeliveryAddress(&req.DeliveryAddress); err != nil {
		return "", err
	}
	return models.ParsePaymentMethod(req.PaymentMethod)
}

func (s *CheckoutService) quote(c *cart.Cart, source string) (pricing.PricingResult, error) {
	if c.Len() == 0 {
		return pricing.PricingResult{}, errors.NewValidationError("cart", "cart is empty")
	}
	res, err := c.Quote(s.policy)
	metrics.ObserveQuote(source, err)
	return res, err
}

// Review validates the checkout details and prices the session's cart
// without placing an order.
func (s *CheckoutService) Review(ctx context.Context, sessionID string, req *models.PlaceOrderRequest) (*CheckoutReview, error) {
	method, err := validatePlaceOrderRequest(req)
	if err != nil {
		return nil, err
	}

	var out *CheckoutReview
	err = s.carts.withCart(sessionID, func(c *cart.Cart) error {
		if _, err := s.quote(c, metrics.SourceReview); err != nil {
			return err
		}
		v, err := s.carts.view(c)
		if err != nil {
			return err
		}
		out = &CheckoutReview{
			Items:           v.Items,
			DeliveryAddress: req.DeliveryAddress,
			PaymentMethod:   method,
			PromoCode:       v.PromoCode,
			Summary:         v.Summary,
		}
		return nil
	})
	return out, err
}

// PlaceOrder places the session's cart as a confirmed order and empties the
// cart. With a non-empty idempotencyKey, a repeated request returns the order
// the first one placed.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sessionID string, req *models.PlaceOrderRequest, idempotencyKey string) (*PlacedOrder, error) {
	method, err := validatePlaceOrderRequest(req)
	if err != nil {
		return nil, err
	}
	if len(idempotencyKey) > maxIdempotencyKeyLength {
		return nil, errors.NewValidationError("idempotency_key", "idempotency key too long")
	}

	if idempotencyKey != "" {
		if placed, err := s.replay(ctx, sessionID, idempotencyKey); placed != nil || err != nil {
			return placed, err
		}

		locked, err := s.idem.TryLock(ctx, sessionID, idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("claim idempotency key: %w", err)
		}
		if !locked {
			return nil, fmt.Errorf("order with this idempotency key is in progress: %w", errors.ErrConflict)
		}
	}

	order, err := s.place(ctx, sessionID, req, method, idempotencyKey)
	if err != nil {
		if idempotencyKey != "" {
			if rerr := s.idem.Release(ctx, sessionID, idempotencyKey); rerr != nil {
				s.logger.Warn("Failed to release idempotency key", logging.Fields{"error": rerr.Error()})
			}
		}
		return nil, err
	}

	if idempotencyKey != "" {
		// The order carries the key, so replay still finds it when this fails.
		if err := s.idem.Remember(ctx, sessionID, idempotencyKey, order.ID); err != nil {
			s.logger.Error("Failed to remember idempotency key", logging.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			})
		}
	}

	if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
		// Log but don't fail
		s.logger.Error("Failed to publish order placed event", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}

	metrics.ObserveOrderPlaced(string(order.PaymentMethod), order.Pricing.Total.InexactFloat64())
	s.logger.Info("Order placed", logging.Fields{
		"order_id":       order.ID,
		"session_id":     sessionID,
		"payment_method": order.PaymentMethod,
		"total":          order.Pricing.Total.String(),
	})

	return &PlacedOrder{Order: order}, nil
}

// replay returns the order already placed under key, or nil when there is
// none. The key store is consulted first and the order records second.
func (s *CheckoutService) replay(ctx context.Context, sessionID, key string) (*PlacedOrder, error) {
	var order *models.Order
	orderID, found, err := s.idem.Recall(ctx, sessionID, key)
	switch {
	case err != nil:
		s.logger.Warn("Failed to recall idempotency key", logging.Fields{"error": err.Error()})
	case found:
		order, err = s.orders.GetByID(ctx, orderID)
		if err != nil && !errors.IsNotFound(err) {
			return nil, err
		}
	}

	if order == nil {
		order, err = s.orders.FindByIdempotencyKey(ctx, sessionID, key)
		if errors.IsNotFound(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
	}

	metrics.ObserveIdempotentReplay()
	s.logger.Info("Returning previously placed order", logging.Fields{"order_id": order.ID})
	return &PlacedOrder{Order: order, Replayed: true}, nil
}

func (s *CheckoutService) place(ctx context.Context, sessionID string, req *models.PlaceOrderRequest, method models.PaymentMethod, idempotencyKey string) (*models.Order, error) {
	var order *models.Order
	err := s.carts.withCart(sessionID, func(c *cart.Cart) error {
		summary, err := s.quote(c, metrics.SourceOrder)
		if err != nil {
			return err
		}

		items := c.Items()
		lines := make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			line := models.OrderItem{
				SKU:       item.SKU,
				Name:      item.SKU,
				UnitPrice: item.UnitPrice,
				Quantity:  item.Quantity,
				LineTotal: item.LineTotal(),
			}
			if p, err := s.catalog.Product(item.SKU); err == nil {
				line.Name = p.Name
				line.Image = p.Image
			}
			lines = append(lines, line)
		}

		o := &models.Order{
			SessionID:       sessionID,
			IdempotencyKey:  idempotencyKey,
			Status:          models.OrderStatusConfirmed,
			Items:           lines,
			Pricing:         summary,
			PaymentMethod:   method,
			DeliveryAddress: req.DeliveryAddress,
			PromoCode:       c.PromoCode(),
		}
		if err := s.orders.Create(ctx, o); err != nil {
			s.logger.Error("Failed to create order", logging.Fields{
				"session_id": sessionID,
				"error":      err.Error(),
			})
			return err
		}

		c.Clear()
		order = o
		return nil
	})
	return order, err
}
