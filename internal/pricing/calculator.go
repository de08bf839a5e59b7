package pricing

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// ComputeSubtotal sums UnitPrice * Quantity over items. An empty slice yields
// zero. Items are read, never modified.
func ComputeSubtotal(items []LineItem) (decimal.Decimal, error) {
	subtotal := decimal.Zero
	for i, item := range items {
		if item.UnitPrice.IsNegative() {
			return decimal.Zero, invalid(fmt.Sprintf("items[%d].unit_price", i), item.UnitPrice.String(), "must not be negative")
		}
		if item.Quantity < 0 {
			return decimal.Zero, invalid(fmt.Sprintf("items[%d].quantity", i), strconv.Itoa(item.Quantity), "must not be negative")
		}
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal, nil
}

// ComputeTax returns subtotal * rate rounded half-up to the given number of
// decimal places.
func ComputeTax(subtotal, rate decimal.Decimal, places int32) (decimal.Decimal, error) {
	if subtotal.IsNegative() {
		return decimal.Zero, invalid("subtotal", subtotal.String(), "must not be negative")
	}
	if rate.IsNegative() {
		return decimal.Zero, invalid("tax_rate", rate.String(), "must not be negative")
	}
	// Round is half away from zero, which is half-up for non-negative values.
	return subtotal.Mul(rate).Round(places), nil
}

// ComputeShipping returns zero when subtotal reaches threshold (inclusive) and
// flatFee otherwise.
func ComputeShipping(subtotal, threshold, flatFee decimal.Decimal) (decimal.Decimal, error) {
	if subtotal.IsNegative() {
		return decimal.Zero, invalid("subtotal", subtotal.String(), "must not be negative")
	}
	if threshold.IsNegative() {
		return decimal.Zero, invalid("free_shipping_threshold", threshold.String(), "must not be negative")
	}
	if flatFee.IsNegative() {
		return decimal.Zero, invalid("flat_shipping_fee", flatFee.String(), "must not be negative")
	}
	if subtotal.GreaterThanOrEqual(threshold) {
		return decimal.Zero, nil
	}
	return flatFee, nil
}

// ComputeTotal returns subtotal + tax + shipping.
func ComputeTotal(subtotal, tax, shipping decimal.Decimal) (decimal.Decimal, error) {
	for _, part := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"subtotal", subtotal},
		{"tax", tax},
		{"shipping_fee", shipping},
	} {
		if part.value.IsNegative() {
			return decimal.Zero, invalid(part.name, part.value.String(), "must not be negative")
		}
	}
	return subtotal.Add(tax).Add(shipping), nil
}
