package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/pricing"
)

func TestCartService_AddItemDefaultsToMOQ(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	change, err := f.carts.AddItem(ctx, "s1", AddItemRequest{ProductID: "1"})
	require.NoError(t, err)
	assert.True(t, change.Applied)
	assert.Equal(t, 100, change.Item.Quantity)
	require.Len(t, change.Cart.Items, 1)
	assert.Equal(t, "Paracetamol 500mg", change.Cart.Items[0].Name)
	assert.Equal(t, "250.00", change.Cart.Summary.Subtotal.StringFixed(2))
	assert.Equal(t, "380.00", change.Cart.Summary.Total.StringFixed(2))
}

func TestCartService_AddItemUsesBulkTier(t *testing.T) {
	f := newFixture(t)

	change, err := f.carts.AddItem(context.Background(), "s1", AddItemRequest{ProductID: "1", Quantity: 500})
	require.NoError(t, err)
	assert.Equal(t, "2.2", change.Item.UnitPrice.String())
	assert.Equal(t, "1100.00", change.Cart.Summary.Subtotal.StringFixed(2))
}

func TestCartService_AddItemErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "s1", AddItemRequest{ProductID: "999"})
	assert.True(t, errors.IsNotFound(err))

	_, err = f.carts.AddItem(ctx, "s1", AddItemRequest{ProductID: "2", Quantity: 10})
	var inv *pricing.InvalidInputError
	require.True(t, stderrors.As(err, &inv), "below MOQ")
	assert.Equal(t, "quantity", inv.Field)

	_, err = f.carts.AddItem(ctx, "s1", AddItemRequest{ProductID: "2", Quantity: 501})
	assert.True(t, stderrors.As(err, &inv), "above stock")
}

func TestCartService_AddItemMergeOverStockIsIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "s1", AddItemRequest{ProductID: "2", Quantity: 400})
	require.NoError(t, err)

	change, err := f.carts.AddItem(ctx, "s1", AddItemRequest{ProductID: "2", Quantity: 200})
	require.NoError(t, err)
	assert.False(t, change.Applied)
	assert.Equal(t, 400, change.Item.Quantity)
}

func TestCartService_IncrementDecrement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "s1", AddItemRequest{ProductID: "1"})
	require.NoError(t, err)

	change, err := f.carts.Increment(ctx, "s1", "1")
	require.NoError(t, err)
	assert.True(t, change.Applied)
	assert.Equal(t, 110, change.Item.Quantity)
	assert.Equal(t, "275.00", change.Cart.Summary.Subtotal.StringFixed(2))

	change, err = f.carts.Decrement(ctx, "s1", "1")
	require.NoError(t, err)
	assert.Equal(t, 100, change.Item.Quantity)

	change, err = f.carts.Decrement(ctx, "s1", "1")
	require.NoError(t, err)
	assert.False(t, change.Applied, "cannot go below MOQ")
	assert.Equal(t, 100, change.Item.Quantity)
	assert.Equal(t, "250.00", change.Cart.Summary.Subtotal.StringFixed(2))

	_, err = f.carts.Increment(ctx, "s1", "nope")
	assert.True(t, errors.IsNotFound(err))
}

func TestCartService_UpdateItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "s1", AddItemRequest{ProductID: "2"})
	require.NoError(t, err)

	change, err := f.carts.UpdateItem(ctx, "s1", "2", UpdateItemRequest{Delta: intPtr(25)})
	require.NoError(t, err)
	assert.True(t, change.Applied)
	assert.Equal(t, 75, change.Item.Quantity)

	change, err = f.carts.UpdateItem(ctx, "s1", "2", UpdateItemRequest{Quantity: intPtr(1000)})
	require.NoError(t, err)
	assert.False(t, change.Applied)
	assert.Equal(t, 75, change.Item.Quantity)

	change, err = f.carts.UpdateItem(ctx, "s1", "2", UpdateItemRequest{Quantity: intPtr(0)})
	require.NoError(t, err)
	assert.True(t, change.Applied)
	assert.Empty(t, change.Cart.Items)

	_, err = f.carts.UpdateItem(ctx, "s1", "2", UpdateItemRequest{})
	_, ok := errors.AsValidation(err)
	assert.True(t, ok)

	_, err = f.carts.UpdateItem(ctx, "s1", "2", UpdateItemRequest{Delta: intPtr(1), Quantity: intPtr(1)})
	_, ok = errors.AsValidation(err)
	assert.True(t, ok)
}

func TestCartService_RemovePromoClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "s1", AddItemRequest{ProductID: "1"})
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, "s1", AddItemRequest{ProductID: "5"})
	require.NoError(t, err)

	view, err := f.carts.ApplyPromoCode(ctx, "s1", " monsoon10 ")
	require.NoError(t, err)
	assert.Equal(t, "MONSOON10", view.PromoCode)

	_, err = f.carts.ApplyPromoCode(ctx, "s1", "no spaces!")
	_, ok := errors.AsValidation(err)
	assert.True(t, ok)

	view, err = f.carts.RemoveItem(ctx, "s1", "1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "5", view.Items[0].SKU)

	_, err = f.carts.RemoveItem(ctx, "s1", "1")
	assert.True(t, errors.IsNotFound(err))

	view, err = f.carts.Clear(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Empty(t, view.PromoCode)
	assert.True(t, view.Summary.Subtotal.IsZero())
}

func TestCartService_SessionsAreSeparate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "s1", AddItemRequest{ProductID: "1"})
	require.NoError(t, err)

	view, err := f.carts.Get(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}
