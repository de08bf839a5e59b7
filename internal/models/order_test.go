package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
)

func TestOrderStatus_StepIndex(t *testing.T) {
	assert.Equal(t, 0, OrderStatusConfirmed.StepIndex())
	assert.Equal(t, 1, OrderStatusProcessing.StepIndex())
	assert.Equal(t, 2, OrderStatusShipped.StepIndex())
	assert.Equal(t, 3, OrderStatusDelivered.StepIndex())
	assert.Equal(t, -1, OrderStatusCancelled.StepIndex())
}

func TestOrderStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusConfirmed, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusConfirmed, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
		{OrderStatusProcessing, OrderStatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	s, err := ParseOrderStatus(" Shipped ")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, s)

	_, err = ParseOrderStatus("lost")
	_, ok := errors.AsValidation(err)
	assert.True(t, ok)
}

func TestOrderTab_Includes(t *testing.T) {
	tab, err := ParseOrderTab("")
	require.NoError(t, err)
	assert.Equal(t, OrderTabActive, tab)

	assert.True(t, OrderTabActive.Includes(OrderStatusConfirmed))
	assert.True(t, OrderTabActive.Includes(OrderStatusShipped))
	assert.False(t, OrderTabActive.Includes(OrderStatusDelivered))
	assert.True(t, OrderTabDelivered.Includes(OrderStatusDelivered))
	assert.True(t, OrderTabCancelled.Includes(OrderStatusCancelled))
	assert.False(t, OrderTabCancelled.Includes(OrderStatusProcessing))

	_, err = ParseOrderTab("archived")
	assert.Error(t, err)
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod("")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodUPI, m)

	m, err = ParsePaymentMethod("COD")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodCOD, m)

	_, err = ParsePaymentMethod("card")
	assert.Error(t, err)

	methods := PaymentMethods()
	require.Len(t, methods, 3)
	assert.True(t, methods[0].Default)
}

func TestDeliveryAddress_String(t *testing.T) {
	a := DeliveryAddress{
		StoreName: "123 Medical Store",
		Address:   "Healthcare Street",
		City:      "Pune",
		State:     "Maharashtra",
		Pincode:   "411001",
	}
	assert.Equal(t, "123 Medical Store, Healthcare Street, Pune, Maharashtra - 411001", a.String())
}
