package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/cart"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/catalog"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/pricing"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/repository"
)

var promoCodePattern = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)

// CartLine is a cart line enriched with catalog details for display.
type CartLine struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand,omitempty"`
	Image       string          `json:"image,omitempty"`
	PackSize    string          `json:"pack_size,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	MinQuantity int             `json:"min_quantity,omitempty"`
	MaxQuantity int             `json:"max_quantity,omitempty"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// CartView is a cart and its price summary as of one read.
type CartView struct {
	Items     []CartLine            `json:"items"`
	PromoCode string                `json:"promo_code,omitempty"`
	Summary   pricing.PricingResult `json:"summary"`
}

// AddItemRequest adds a catalog product to the cart. A zero quantity adds
// the product's minimum order quantity.
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"gte=0"`
}

// UpdateItemRequest changes a line by a relative delta or to an absolute
// quantity. Exactly one must be set.
type UpdateItemRequest struct {
	Delta    *int `json:"delta"`
	Quantity *int `json:"quantity"`
}

// ItemChange reports the outcome of a line mutation.
type ItemChange struct {
	Item    pricing.LineItem `json:"item"`
	Applied bool             `json:"applied"`
	Cart    *CartView        `json:"cart"`
}

// CartService manages per-session carts.
type CartService struct {
	catalog *catalog.Catalog
	carts   *repository.CartStore
	policy  pricing.Policy
	logger  *logging.LoggerV2
}

// NewCartService creates a new cart service.
func NewCartService(cat *catalog.Catalog, carts *repository.CartStore, policy pricing.Policy) *CartService {
	return &CartService{
		catalog: cat,
		carts:   carts,
		policy:  policy,
		logger:  logging.NewLoggerV2("cart-service"),
	}
}

func (s *CartService) view(c *cart.Cart) (*CartView, error) {
	items := c.Items()
	summary, err := c.Quote(s.policy)
	metrics.ObserveQuote(metrics.SourceCart, err)
	if err != nil {
		return nil, err
	}

	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		line := CartLine{
			SKU:         item.SKU,
			Name:        item.SKU,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			MinQuantity: item.MinQuantity,
			MaxQuantity: item.MaxQuantity,
			LineTotal:   item.LineTotal(),
		}
		if p, err := s.catalog.Product(item.SKU); err == nil {
			line.Name = p.Name
			line.Brand = p.Brand
			line.Image = p.Image
			line.PackSize = p.PackSize
		}
		lines = append(lines, line)
	}

	return &CartView{Items: lines, PromoCode: c.PromoCode(), Summary: summary}, nil
}

// Get returns the session's cart.
func (s *CartService) Get(ctx context.Context, sessionID string) (*CartView, error) {
	var out *CartView
	err := s.carts.Update(sessionID, func(c *cart.Cart) error {
		v, err := s.view(c)
		out = v
		return err
	})
	return out, err
}

// AddItem adds a catalog product to the session's cart, merging with an
// existing line for the same product.
func (s *CartService) AddItem(ctx context.Context, sessionID string, req AddItemRequest) (*ItemChange, error) {
	product, err := s.catalog.Product(req.ProductID)
	if err != nil {
		return nil, err
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = product.MOQ
	}

	line, err := s.catalog.QuoteLine(product.ID, quantity)
	if err != nil {
		return nil, err
	}

	var out *ItemChange
	err = s.carts.Update(sessionID, func(c *cart.Cart) error {
		item, applied := c.Add(line)
		metrics.ObserveLineAdded(metrics.LineSourceAdd, applied)
		v, err := s.view(c)
		if err != nil {
			return err
		}
		out = &ItemChange{Item: item, Applied: applied, Cart: v}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cart item added", logging.Fields{
		"session_id": sessionID,
		"sku":        product.ID,
		"quantity":   quantity,
		"applied":    out.Applied,
	})
	return out, nil
}

// UpdateItem applies a delta or absolute quantity to a line. Out-of-bounds
// changes leave the line untouched and report Applied == false.
func (s *CartService) UpdateItem(ctx context.Context, sessionID, sku string, req UpdateItemRequest) (*ItemChange, error) {
	if (req.Delta == nil) == (req.Quantity == nil) {
		return nil, errors.NewValidationError("delta", "exactly one of delta or quantity is required")
	}

	return s.mutate(sessionID, func(c *cart.Cart) (pricing.LineItem, bool, error) {
		if req.Delta != nil {
			return c.Adjust(sku, *req.Delta)
		}
		return c.SetQuantity(sku, *req.Quantity)
	})
}

// Increment raises a line by the cart's quantity step.
func (s *CartService) Increment(ctx context.Context, sessionID, sku string) (*ItemChange, error) {
	return s.mutate(sessionID, func(c *cart.Cart) (pricing.LineItem, bool, error) {
		return c.Increment(sku)
	})
}

// Decrement lowers a line by the cart's quantity step.
func (s *CartService) Decrement(ctx context.Context, sessionID, sku string) (*ItemChange, error) {
	return s.mutate(sessionID, func(c *cart.Cart) (pricing.LineItem, bool, error) {
		return c.Decrement(sku)
	})
}

func (s *CartService) mutate(sessionID string, fn func(*cart.Cart) (pricing.LineItem, bool, error)) (*ItemChange, error) {
	var out *ItemChange
	err := s.carts.Update(sessionID, func(c *cart.Cart) error {
		item, applied, err := fn(c)
		if err != nil {
			return err
		}
		metrics.ObserveAdjustment(applied)
		v, err := s.view(c)
		if err != nil {
			return err
		}
		out = &ItemChange{Item: item, Applied: applied, Cart: v}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !out.Applied {
		s.logger.Debug("Quantity change ignored", logging.Fields{
			"session_id": sessionID,
			"sku":        out.Item.SKU,
			"quantity":   out.Item.Quantity,
		})
	}
	return out, nil
}

// RemoveItem drops a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, sku string) (*CartView, error) {
	var out *CartView
	err := s.carts.Update(sessionID, func(c *cart.Cart) error {
		if !c.Remove(sku) {
			return errors.NotFoundf("cart item %s", sku)
		}
		v, err := s.view(c)
		out = v
		return err
	})
	return out, err
}

// ApplyPromoCode records a promo code on the cart. Codes are stored for the
// order record only; no discount rules are evaluated.
func (s *CartService) ApplyPromoCode(ctx context.Context, sessionID, code string) (*CartView, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code != "" && !promoCodePattern.MatchString(code) {
		return nil, errors.NewValidationError("promo_code", "promo code must be 3-20 letters or digits")
	}

	var out *CartView
	err := s.carts.Update(sessionID, func(c *cart.Cart) error {
		c.SetPromoCode(code)
		v, err := s.view(c)
		out = v
		return err
	})
	return out, err
}

// Clear empties the session's cart.
func (s *CartService) Clear(ctx context.Context, sessionID string) (*CartView, error) {
	var out *CartView
	err := s.carts.Update(sessionID, func(c *cart.Cart) error {
		c.Clear()
		v, err := s.view(c)
		out = v
		return err
	})
	return out, err
}

func (s *CartService) withCart(sessionID string, fn func(*cart.Cart) error) error {
	return s.carts.Update(sessionID, fn)
}
