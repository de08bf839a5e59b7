package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustQuantity(t *testing.T) {
	tests := []struct {
		name    string
		item    LineItem
		delta   int
		want    int
		applied bool
	}{
		{"increment", LineItem{Quantity: 10, MaxQuantity: 100}, 10, 20, true},
		{"decrement", LineItem{Quantity: 20, MaxQuantity: 100}, -10, 10, true},
		{"below zero is a no-op", LineItem{Quantity: 10, MaxQuantity: 100}, -20, 10, false},
		{"to zero is a no-op", LineItem{Quantity: 10, MaxQuantity: 100}, -10, 10, false},
		{"over max is a no-op", LineItem{Quantity: 90, MaxQuantity: 100}, 20, 90, false},
		{"exactly max", LineItem{Quantity: 90, MaxQuantity: 100}, 10, 100, true},
		{"unbounded", LineItem{Quantity: 1}, 100000, 100001, true},
		{"below moq is a no-op", LineItem{Quantity: 100, MinQuantity: 100}, -10, 100, false},
		{"zero delta", LineItem{Quantity: 5}, 0, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, applied := AdjustQuantity(tt.item, tt.delta)
			assert.Equal(t, tt.applied, applied)
			assert.Equal(t, tt.want, got.Quantity)
		})
	}
}

func TestAdjustQuantity_KeepsPriceAndOriginal(t *testing.T) {
	item := LineItem{SKU: "1", UnitPrice: amt("2.5"), Quantity: 100, MaxQuantity: 1000}

	got, applied := AdjustQuantity(item, 10)

	require.True(t, applied)
	assert.Equal(t, 110, got.Quantity)
	assert.True(t, got.UnitPrice.Equal(item.UnitPrice))
	assert.Equal(t, 100, item.Quantity, "input item must not change")
}

func TestNewLineItem(t *testing.T) {
	item, err := NewLineItem("1", amt("2.5"), 100, 100, 1000)
	require.NoError(t, err)
	assertAmount(t, "250", item.LineTotal())

	tests := []struct {
		name     string
		price    string
		qty      int
		min, max int
		field    string
	}{
		{"negative price", "-2.5", 1, 0, 0, "unit_price"},
		{"zero quantity", "2.5", 0, 0, 0, "quantity"},
		{"below moq", "2.5", 50, 100, 0, "quantity"},
		{"above max", "2.5", 2000, 0, 1000, "quantity"},
		{"negative max", "2.5", 1, 0, -1, "max_quantity"},
		{"negative min", "2.5", 1, -1, 0, "min_quantity"},
		{"min above max", "2.5", 1, 10, 5, "min_quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLineItem("1", amt(tt.price), tt.qty, tt.min, tt.max)
			var inv *InvalidInputError
			require.True(t, errors.As(err, &inv))
			assert.Equal(t, tt.field, inv.Field)
		})
	}
}

func TestNewLineItem_Limits(t *testing.T) {
	var inv *InvalidInputError

	_, err := NewLineItem("A", amt("1e2000000"), 1, 0, 0)
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "unit_price", inv.Field)

	_, err = NewLineItem("A", amt("1"), MaxLineQuantity+1, 0, 0)
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "quantity", inv.Field)

	item, err := NewLineItem("A", amt("1"), MaxLineQuantity, 0, 0)
	require.NoError(t, err)

	_, applied := AdjustQuantity(item, 1)
	assert.False(t, applied)
	_, applied = AdjustQuantity(LineItem{Quantity: 5}, math.MaxInt)
	assert.False(t, applied, "overflowing delta is a no-op")
}
