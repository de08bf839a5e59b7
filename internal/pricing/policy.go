package pricing

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Policy is the tax and shipping configuration a quote is computed under.
type Policy struct {
	Currency              string
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	// Places is the currency's minor-unit precision.
	Places int32
}

// DefaultPolicy is 12% GST, free shipping from 5000 INR, otherwise a flat 100.
func DefaultPolicy() Policy {
	return Policy{
		Currency:              "INR",
		TaxRate:               decimal.RequireFromString("0.12"),
		FreeShippingThreshold: decimal.NewFromInt(5000),
		FlatShippingFee:       decimal.NewFromInt(100),
		Places:                2,
	}
}

// Validate checks that the policy can produce non-negative quotes.
func (p Policy) Validate() error {
	if p.Currency == "" {
		return invalid("currency", "", "is required")
	}
	if p.TaxRate.IsNegative() {
		return invalid("tax_rate", p.TaxRate.String(), "must not be negative")
	}
	if p.FreeShippingThreshold.IsNegative() {
		return invalid("free_shipping_threshold", p.FreeShippingThreshold.String(), "must not be negative")
	}
	if p.FlatShippingFee.IsNegative() {
		return invalid("flat_shipping_fee", p.FlatShippingFee.String(), "must not be negative")
	}
	if p.Places < 0 || p.Places > 4 {
		return invalid("places", strconv.Itoa(int(p.Places)), "must be between 0 and 4")
	}
	return nil
}

// PricingResult is the derived price breakdown of a set of line items.
type PricingResult struct {
	Currency    string
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	ShippingFee decimal.Decimal
	Total       decimal.Decimal

	// FreeShippingRemaining is what is left to spend to reach free shipping.
	FreeShippingRemaining decimal.Decimal
	ItemCount             int
	UnitCount             int

	places int32
}

// Quote computes subtotal, tax, shipping and total for items.
// Every unit price must be expressible in the currency's minor unit, so the
// subtotal the shipping decision sees is the one the result reports.
func (p Policy) Quote(items []LineItem) (PricingResult, error) {
	for i, item := range items {
		if err := p.checkLine(i, item); err != nil {
			return PricingResult{}, err
		}
	}

	subtotal, err := ComputeSubtotal(items)
	if err != nil {
		return PricingResult{}, err
	}
	tax, err := ComputeTax(subtotal, p.TaxRate, p.Places)
	if err != nil {
		return PricingResult{}, err
	}
	shipping, err := ComputeShipping(subtotal, p.FreeShippingThreshold, p.FlatShippingFee)
	if err != nil {
		return PricingResult{}, err
	}
	total, err := ComputeTotal(subtotal, tax, shipping)
	if err != nil {
		return PricingResult{}, err
	}

	units := 0
	for _, item := range items {
		units += item.Quantity
	}

	remaining := p.FreeShippingThreshold.Sub(subtotal)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return PricingResult{
		Currency:              p.Currency,
		Subtotal:              subtotal,
		Tax:                   tax,
		ShippingFee:           shipping,
		Total:                 total,
		FreeShippingRemaining: remaining,
		ItemCount:             len(items),
		UnitCount:             units,
		places:                p.Places,
	}, nil
}

func (p Policy) checkLine(i int, item LineItem) error {
	field := fmt.Sprintf("items[%d].unit_price", i)
	if err := checkUnitPrice(field, item.UnitPrice); err != nil {
		return err
	}
	if !item.UnitPrice.Equal(item.UnitPrice.Truncate(p.Places)) {
		return invalid(field, item.UnitPrice.String(), fmt.Sprintf("must not be finer than %d decimal places", p.Places))
	}
	if item.Quantity < 0 || item.Quantity > MaxLineQuantity {
		return invalid(fmt.Sprintf("items[%d].quantity", i), strconv.Itoa(item.Quantity),
			fmt.Sprintf("must be between 0 and %d", MaxLineQuantity))
	}
	return nil
}

// FreeShipping reports whether the shipping fee was waived.
func (r PricingResult) FreeShipping() bool {
	return r.ShippingFee.IsZero()
}

type pricingResultJSON struct {
	Currency              string `json:"currency"`
	Subtotal              string `json:"subtotal"`
	Tax                   string `json:"tax"`
	ShippingFee           string `json:"shipping_fee"`
	Total                 string `json:"total"`
	FreeShipping          bool   `json:"free_shipping"`
	FreeShippingRemaining string `json:"free_shipping_remaining"`
	ItemCount             int    `json:"item_count"`
	UnitCount             int    `json:"unit_count"`
}

// MarshalJSON renders amounts as fixed-point strings in the currency's precision.
func (r PricingResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(pricingResultJSON{
		Currency:              r.Currency,
		Subtotal:              r.Subtotal.StringFixed(r.places),
		Tax:                   r.Tax.StringFixed(r.places),
		ShippingFee:           r.ShippingFee.StringFixed(r.places),
		Total:                 r.Total.StringFixed(r.places),
		FreeShipping:          r.FreeShipping(),
		FreeShippingRemaining: r.FreeShippingRemaining.StringFixed(r.places),
		ItemCount:             r.ItemCount,
		UnitCount:             r.UnitCount,
	})
}

// UnmarshalJSON reads the format written by MarshalJSON.
func (r *PricingResult) UnmarshalJSON(data []byte) error {
	var raw pricingResultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out PricingResult
	for _, f := range []struct {
		src string
		dst *decimal.Decimal
	}{
		{raw.Subtotal, &out.Subtotal},
		{raw.Tax, &out.Tax},
		{raw.ShippingFee, &out.ShippingFee},
		{raw.Total, &out.Total},
		{raw.FreeShippingRemaining, &out.FreeShippingRemaining},
	} {
		d, err := ParseAmount(f.src)
		if err != nil {
			return err
		}
		*f.dst = d
	}

	out.Currency = raw.Currency
	out.ItemCount = raw.ItemCount
	out.UnitCount = raw.UnitCount
	out.places = -out.Total.Exponent()
	if out.places < 0 {
		out.places = 0
	}
	*r = out
	return nil
}
