package pricing

import (
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	// MaxLineQuantity caps the units on one line.
	MaxLineQuantity = 1_000_000

	// Unit prices are carried with at most maxPriceScale fractional digits
	// and stay below maxUnitPrice.
	maxPriceScale = 8
)

var maxUnitPrice = decimal.NewFromInt(1_000_000_000)

// checkUnitPrice bounds a unit price before any arithmetic touches it. The
// exponent is checked first so oversized values are never expanded.
func checkUnitPrice(field string, price decimal.Decimal) error {
	if price.IsZero() {
		return nil
	}
	if price.Exponent() < -maxPriceScale {
		return invalid(field, "", "has too many decimal places")
	}
	if price.Exponent() > 9 || price.Abs().GreaterThan(maxUnitPrice) {
		return invalid(field, "", "must not exceed "+maxUnitPrice.String())
	}
	if price.IsNegative() {
		return invalid(field, price.String(), "must not be negative")
	}
	return nil
}

// LineItem is one product line of a cart or order. The unit price is fixed
// when the item is built; operations return copies and never change it.
type LineItem struct {
	SKU       string          `json:"sku"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`

	// MinQuantity is the minimum order quantity. Zero means 1.
	MinQuantity int `json:"min_quantity,omitempty"`
	// MaxQuantity caps the quantity. Zero means unbounded.
	MaxQuantity int `json:"max_quantity,omitempty"`
}

// NewLineItem builds a line item, checking price and quantity bounds.
func NewLineItem(sku string, unitPrice decimal.Decimal, quantity, minQuantity, maxQuantity int) (LineItem, error) {
	if err := checkUnitPrice("unit_price", unitPrice); err != nil {
		return LineItem{}, err
	}
	if minQuantity < 0 {
		return LineItem{}, invalid("min_quantity", strconv.Itoa(minQuantity), "must not be negative")
	}
	if maxQuantity < 0 {
		return LineItem{}, invalid("max_quantity", strconv.Itoa(maxQuantity), "must not be negative")
	}
	if maxQuantity > 0 && minQuantity > maxQuantity {
		return LineItem{}, invalid("min_quantity", strconv.Itoa(minQuantity), "exceeds max quantity")
	}

	item := LineItem{
		SKU:         sku,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		MinQuantity: minQuantity,
		MaxQuantity: maxQuantity,
	}
	if !item.inBounds(quantity) {
		return LineItem{}, invalid("quantity", strconv.Itoa(quantity), "out of bounds")
	}
	return item, nil
}

// LineTotal returns UnitPrice * Quantity.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l LineItem) inBounds(quantity int) bool {
	if quantity <= 0 || quantity < l.MinQuantity || quantity > MaxLineQuantity {
		return false
	}
	if l.MaxQuantity > 0 && quantity > l.MaxQuantity {
		return false
	}
	return true
}

// AdjustQuantity returns item with its quantity moved by delta when the result
// stays within (0, MaxQuantity], at or above MinQuantity and at most
// MaxLineQuantity. Out-of-bounds
// adjustments are ignored: the original item comes back with ok == false.
func AdjustQuantity(item LineItem, delta int) (LineItem, bool) {
	if delta > MaxLineQuantity || delta < -MaxLineQuantity {
		return item, false
	}
	next := item.Quantity + delta
	if !item.inBounds(next) {
		return item, false
	}
	item.Quantity = next
	return item, true
}
