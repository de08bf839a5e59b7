package pricing

import "github.com/shopspring/decimal"

// PriceTier is a bulk price that applies from MinQuantity units upwards.
type PriceTier struct {
	MinQuantity int             `json:"min_quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// TierPrice picks the tier with the largest MinQuantity not above quantity.
// Tiers need not be sorted. ok is false when no tier applies.
func TierPrice(tiers []PriceTier, quantity int) (price decimal.Decimal, ok bool) {
	best := -1
	for i, t := range tiers {
		if t.MinQuantity > quantity {
			continue
		}
		if best < 0 || t.MinQuantity > tiers[best].MinQuantity {
			best = i
		}
	}
	if best < 0 {
		return decimal.Zero, false
	}
	return tiers[best].UnitPrice, true
}
