package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierPrice(t *testing.T) {
	// Listed out of order on purpose.
	tiers := []PriceTier{
		{MinQuantity: 1000, UnitPrice: amt("2.0")},
		{MinQuantity: 100, UnitPrice: amt("2.5")},
		{MinQuantity: 5000, UnitPrice: amt("1.8")},
		{MinQuantity: 500, UnitPrice: amt("2.2")},
	}

	tests := []struct {
		quantity int
		want     string
		ok       bool
	}{
		{50, "0", false},
		{100, "2.5", true},
		{499, "2.5", true},
		{500, "2.2", true},
		{1000, "2.0", true},
		{4999, "2.0", true},
		{5000, "1.8", true},
		{100000, "1.8", true},
	}

	for _, tt := range tests {
		got, ok := TierPrice(tiers, tt.quantity)
		assert.Equal(t, tt.ok, ok, "quantity %d", tt.quantity)
		assertAmount(t, tt.want, got)
	}

	_, ok := TierPrice(nil, 10)
	assert.False(t, ok)
}
