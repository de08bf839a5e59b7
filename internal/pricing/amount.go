package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// AmountFromFloat converts a float coming from JSON or configuration into a
// fixed-point amount. NaN and infinities are rejected.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, invalid("amount", "", "must be a finite number")
	}
	return decimal.NewFromFloat(f), nil
}

// ParseAmount parses a decimal string such as "2.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid("amount", s, "not a decimal number")
	}
	return d, nil
}

// MustAmount parses s and panics on failure. Intended for literals.
func MustAmount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
