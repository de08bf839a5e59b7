// Package cart implements the shopping cart as an explicit, caller-owned
// collection of line items. Prices are recomputed from the items on every
// Quote; nothing derived is cached.
package cart

import (
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/pricing"
)

// DefaultStep is the quantity change applied by Increment and Decrement.
const DefaultStep = 10

// Cart holds line items keyed by SKU in insertion order. A Cart is owned by
// one caller at a time and is not safe for concurrent use.
type Cart struct {
	items     []pricing.LineItem
	step      int
	promoCode string
}

// New returns an empty cart using step for Increment/Decrement.
func New(step int) *Cart {
	if step <= 0 {
		step = DefaultStep
	}
	return &Cart{step: step}
}

func (c *Cart) index(sku string) int {
	for i, item := range c.items {
		if item.SKU == sku {
			return i
		}
	}
	return -1
}

// Add puts item in the cart. When the SKU is already present its quantity is
// raised by item.Quantity under the existing line's bounds and price. The
// returned bool is false when the add was ignored for being out of bounds.
func (c *Cart) Add(item pricing.LineItem) (pricing.LineItem, bool) {
	if i := c.index(item.SKU); i >= 0 {
		next, ok := pricing.AdjustQuantity(c.items[i], item.Quantity)
		if ok {
			c.items[i] = next
		}
		return c.items[i], ok
	}

	if _, ok := pricing.AdjustQuantity(item, 0); !ok {
		return item, false
	}
	c.items = append(c.items, item)
	return item, true
}

// Remove drops the line for sku. It reports whether a line was removed.
func (c *Cart) Remove(sku string) bool {
	i := c.index(sku)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// Adjust moves the quantity of sku by delta. Adjustments that would leave the
// line's bounds are ignored and reported with applied == false.
func (c *Cart) Adjust(sku string, delta int) (item pricing.LineItem, applied bool, err error) {
	i := c.index(sku)
	if i < 0 {
		return pricing.LineItem{}, false, errors.NotFoundf("cart item %s", sku)
	}
	next, ok := pricing.AdjustQuantity(c.items[i], delta)
	if ok {
		c.items[i] = next
	}
	return c.items[i], ok, nil
}

// SetQuantity sets an absolute quantity. Zero or less removes the line.
func (c *Cart) SetQuantity(sku string, quantity int) (item pricing.LineItem, applied bool, err error) {
	i := c.index(sku)
	if i < 0 {
		return pricing.LineItem{}, false, errors.NotFoundf("cart item %s", sku)
	}
	if quantity <= 0 {
		removed := c.items[i]
		c.Remove(sku)
		removed.Quantity = 0
		return removed, true, nil
	}
	return c.Adjust(sku, quantity-c.items[i].Quantity)
}

// Increment raises sku by the cart's step.
func (c *Cart) Increment(sku string) (pricing.LineItem, bool, error) {
	return c.Adjust(sku, c.step)
}

// Decrement lowers sku by the cart's step.
func (c *Cart) Decrement(sku string) (pricing.LineItem, bool, error) {
	return c.Adjust(sku, -c.step)
}

// Item returns the line for sku.
func (c *Cart) Item(sku string) (pricing.LineItem, bool) {
	if i := c.index(sku); i >= 0 {
		return c.items[i], true
	}
	return pricing.LineItem{}, false
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []pricing.LineItem {
	out := make([]pricing.LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len is the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.items)
}

// Clear empties the cart and forgets the promo code.
func (c *Cart) Clear() {
	c.items = nil
	c.promoCode = ""
}

// SetPromoCode records a promo code. No discount rules exist yet, so the code
// is kept for display only.
func (c *Cart) SetPromoCode(code string) {
	c.promoCode = code
}

// PromoCode returns the recorded promo code.
func (c *Cart) PromoCode() string {
	return c.promoCode
}

// Quote prices the current lines under policy.
func (c *Cart) Quote(policy pricing.Policy) (pricing.PricingResult, error) {
	return policy.Quote(c.items)
}
