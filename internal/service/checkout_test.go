package service

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/pricing"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/repository"
)

func fillCart(t *testing.T, f *fixture, session string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.carts.AddItem(ctx, session, AddItemRequest{ProductID: "1"})
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, session, AddItemRequest{ProductID: "2"})
	require.NoError(t, err)
}

func TestCheckoutService_PlaceOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fillCart(t, f, "s1")
	_, err := f.carts.ApplyPromoCode(ctx, "s1", "FIRST")
	require.NoError(t, err)

	placed, err := f.checkout.PlaceOrder(ctx, "s1", &models.PlaceOrderRequest{DeliveryAddress: validAddress()}, "")
	require.NoError(t, err)
	assert.False(t, placed.Replayed)

	order := placed.Order
	assert.Equal(t, "ORD003", order.ID)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, models.PaymentMethodUPI, order.PaymentMethod)
	assert.Equal(t, "FIRST", order.PromoCode)
	assert.Equal(t, "660.00", order.Pricing.Total.StringFixed(2))
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Paracetamol 500mg", order.Items[0].Name)
	assert.Equal(t, "250", order.Items[0].LineTotal.String())
	assert.Equal(t, "27AAPFU0939F1ZV", order.DeliveryAddress.GSTNumber)
	assert.Equal(t, "9876543210", order.DeliveryAddress.Phone)

	view, err := f.carts.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, view.Items, "cart is cleared")

	assert.Equal(t, []events.EventType{events.EventTypeOrderPlaced}, f.events.Types())

	stored, err := f.repo.GetByID(ctx, "ORD003")
	require.NoError(t, err)
	assert.Equal(t, "s1", stored.SessionID)
}

func TestCheckoutService_PlaceOrderEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.checkout.PlaceOrder(context.Background(), "s1", &models.PlaceOrderRequest{DeliveryAddress: validAddress()}, "")
	ve, ok := errors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "cart", ve.Field)
	assert.Empty(t, f.events.Types())
}

func TestCheckoutService_PlaceOrderInvalidInput(t *testing.T) {
	f := newFixture(t)
	fillCart(t, f, "s1")

	addr := validAddress()
	addr.City = " "
	addr.Pincode = "4110"
	_, err := f.checkout.PlaceOrder(context.Background(), "s1", &models.PlaceOrderRequest{DeliveryAddress: addr}, "")
	ve, ok := errors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Details, "city")
	assert.Contains(t, ve.Details, "pincode")

	_, err = f.checkout.PlaceOrder(context.Background(), "s1", &models.PlaceOrderRequest{
		DeliveryAddress: validAddress(),
		PaymentMethod:   "bitcoin",
	}, "")
	_, ok = errors.AsValidation(err)
	assert.True(t, ok)

	view, err := f.carts.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, view.Items, 2, "cart untouched on validation failure")
}

func TestCheckoutService_IdempotentPlaceOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fillCart(t, f, "s1")
	req := &models.PlaceOrderRequest{DeliveryAddress: validAddress(), PaymentMethod: "cod"}

	first, err := f.checkout.PlaceOrder(ctx, "s1", req, "key-1")
	require.NoError(t, err)

	second, err := f.checkout.PlaceOrder(ctx, "s1", req, "key-1")
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Equal(t, models.PaymentMethodCOD, second.Order.PaymentMethod)

	assert.Len(t, f.events.Types(), 1)
	active, err := f.repo.List(ctx, models.OrderTabActive)
	require.NoError(t, err)
	assert.Len(t, active, 2, "ORD002 and one new order")
}

func TestCheckoutService_KeyInFlightConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fillCart(t, f, "s1")

	ok, err := f.idem.TryLock(ctx, "s1", "key-2")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.checkout.PlaceOrder(ctx, "s1", &models.PlaceOrderRequest{DeliveryAddress: validAddress()}, "key-2")
	assert.True(t, errors.IsConflict(err))
}

// forgetfulStore claims keys but cannot record their results.
type forgetfulStore struct {
	*repository.MemoryIdempotencyStore
}

func (forgetfulStore) Remember(ctx context.Context, scope, key, value string) error {
	return stderrors.New("store unavailable")
}

func TestCheckoutService_ReplayWhenKeyNotRemembered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := forgetfulStore{repository.NewMemoryIdempotencyStore(time.Hour)}
	checkout := NewCheckoutService(f.carts, f.catalog, f.repo, store, f.events, pricing.DefaultPolicy())
	fillCart(t, f, "s1")
	req := &models.PlaceOrderRequest{DeliveryAddress: validAddress(), PaymentMethod: "cod"}

	first, err := checkout.PlaceOrder(ctx, "s1", req, "key-4")
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := checkout.PlaceOrder(ctx, "s1", req, "key-4")
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Len(t, f.events.Types(), 1)

	fillCart(t, f, "s2")
	other, err := checkout.PlaceOrder(ctx, "s2", req, "key-4")
	require.NoError(t, err)
	assert.False(t, other.Replayed, "keys are scoped to the session")
	assert.NotEqual(t, first.Order.ID, other.Order.ID)
}

func TestCheckoutService_FailedPlacementReleasesKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := &models.PlaceOrderRequest{DeliveryAddress: validAddress()}

	_, err := f.checkout.PlaceOrder(ctx, "s1", req, "key-3")
	require.Error(t, err)

	fillCart(t, f, "s1")
	placed, err := f.checkout.PlaceOrder(ctx, "s1", req, "key-3")
	require.NoError(t, err)
	assert.False(t, placed.Replayed)
}

func TestCheckoutService_Review(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fillCart(t, f, "s1")

	review, err := f.checkout.Review(ctx, "s1", &models.PlaceOrderRequest{
		DeliveryAddress: validAddress(),
		PaymentMethod:   "netbanking",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentMethodNetBanking, review.PaymentMethod)
	assert.Equal(t, "660.00", review.Summary.Total.StringFixed(2))
	assert.Len(t, review.Items, 2)

	view, err := f.carts.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, view.Items, 2, "review does not place")
	assert.Empty(t, f.events.Types())
}

func TestCheckoutService_PaymentMethods(t *testing.T) {
	f := newFixture(t)
	methods := f.checkout.PaymentMethods()
	require.Len(t, methods, 3)
	assert.Equal(t, models.PaymentMethodUPI, methods[0].ID)
}

func TestValidateDeliveryAddress(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.DeliveryAddress)
		field  string
	}{
		{"valid", func(*models.DeliveryAddress) {}, ""},
		{"gst optional", func(a *models.DeliveryAddress) { a.GSTNumber = "" }, ""},
		{"missing store", func(a *models.DeliveryAddress) { a.StoreName = "" }, "store_name"},
		{"missing phone", func(a *models.DeliveryAddress) { a.Phone = "" }, "phone"},
		{"short pincode", func(a *models.DeliveryAddress) { a.Pincode = "12345" }, "pincode"},
		{"alpha pincode", func(a *models.DeliveryAddress) { a.Pincode = "41100A" }, "pincode"},
		{"short gst", func(a *models.DeliveryAddress) { a.GSTNumber = "27AAPFU0939" }, "gst_number"},
		{"bad phone", func(a *models.DeliveryAddress) { a.Phone = "12ab" }, "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := validAddress()
			tt.mutate(&addr)
			NormalizeDeliveryAddress(&addr)

			err := ValidateDeliveryAddress(&addr)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			ve, ok := errors.AsValidation(err)
			require.True(t, ok)
			assert.Contains(t, ve.Details, tt.field)
		})
	}
}
