package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/pricing"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderSteps is the progress tracker order. Cancelled is off the track.
var OrderSteps = []OrderStatus{
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// ParseOrderStatus validates a status name.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if status == OrderStatusCancelled || status.StepIndex() >= 0 {
		return status, nil
	}
	return "", errors.NewValidationError("status", "unknown order status "+s)
}

// StepIndex is the position on the progress tracker, or -1 when the status
// is not on it.
func (s OrderStatus) StepIndex() int {
	for i, step := range OrderSteps {
		if step == s {
			return i
		}
	}
	return -1
}

// Final reports whether no further transitions are allowed.
func (s OrderStatus) Final() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransition reports whether an order in s may move to next. Moves are
// forward-only along OrderSteps; cancellation is allowed until shipping.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s.Final() {
		return false
	}
	if next == OrderStatusCancelled {
		return s.StepIndex() < OrderStatusShipped.StepIndex()
	}
	return next.StepIndex() > s.StepIndex()
}

// OrderTab groups statuses for the order history view.
type OrderTab string

const (
	OrderTabActive    OrderTab = "active"
	OrderTabDelivered OrderTab = "delivered"
	OrderTabCancelled OrderTab = "cancelled"
)

// ParseOrderTab validates a tab name. An empty name selects the active tab.
func ParseOrderTab(s string) (OrderTab, error) {
	switch tab := OrderTab(strings.ToLower(strings.TrimSpace(s))); tab {
	case "":
		return OrderTabActive, nil
	case OrderTabActive, OrderTabDelivered, OrderTabCancelled:
		return tab, nil
	default:
		return "", errors.NewValidationError("tab", "unknown order tab "+s)
	}
}

// Includes reports whether orders in status belong on the tab.
func (t OrderTab) Includes(status OrderStatus) bool {
	switch t {
	case OrderTabDelivered:
		return status == OrderStatusDelivered
	case OrderTabCancelled:
		return status == OrderStatusCancelled
	default:
		return !status.Final()
	}
}

// PaymentMethod is how the customer intends to pay. Nothing is charged by
// this service.
type PaymentMethod string

const (
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodNetBanking PaymentMethod = "netbanking"
	PaymentMethodCOD        PaymentMethod = "cod"
)

// PaymentMethodInfo describes a payment option for display.
type PaymentMethodInfo struct {
	ID          PaymentMethod `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Default     bool          `json:"default"`
}

// PaymentMethods lists the supported options, default first.
func PaymentMethods() []PaymentMethodInfo {
	return []PaymentMethodInfo{
		{ID: PaymentMethodUPI, Title: "UPI Payment", Description: "Pay using any UPI app", Icon: "mobile-alt", Default: true},
		{ID: PaymentMethodNetBanking, Title: "Net Banking", Description: "All major banks supported", Icon: "university"},
		{ID: PaymentMethodCOD, Title: "Cash on Delivery", Description: "Pay when you receive", Icon: "money-bill-wave"},
	}
}

// ParsePaymentMethod validates a payment method. Empty selects UPI.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return PaymentMethodUPI, nil
	case PaymentMethodUPI, PaymentMethodNetBanking, PaymentMethodCOD:
		return m, nil
	default:
		return "", errors.NewValidationError("payment_method", "unsupported payment method "+s)
	}
}

// DeliveryAddress is the store an order ships to.
type DeliveryAddress struct {
	StoreName     string `json:"store_name" binding:"required"`
	Address       string `json:"address" binding:"required"`
	City          string `json:"city" binding:"required"`
	State         string `json:"state" binding:"required"`
	Pincode       string `json:"pincode" binding:"required"`
	GSTNumber     string `json:"gst_number,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	Phone         string `json:"phone" binding:"required"`
}

// String renders the address on one line.
func (a DeliveryAddress) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.StoreName, a.Address, a.City} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	line := strings.Join(parts, ", ")
	if a.State != "" {
		line += ", " + a.State
	}
	if a.Pincode != "" {
		line += " - " + a.Pincode
	}
	return line
}

// OrderItem is a priced line of a placed order.
type OrderItem struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Order is a placed order.
type Order struct {
	ID              string                `json:"id"`
	SessionID       string                `json:"-"`
	IdempotencyKey  string                `json:"-"`
	Status          OrderStatus           `json:"status"`
	Items           []OrderItem           `json:"items"`
	Pricing         pricing.PricingResult `json:"pricing"`
	PaymentMethod   PaymentMethod         `json:"payment_method"`
	DeliveryAddress DeliveryAddress       `json:"delivery_address"`
	PromoCode       string                `json:"promo_code,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// StepIndex is the order's position on the progress tracker.
func (o *Order) StepIndex() int {
	return o.Status.StepIndex()
}

// LineItems converts the order lines back to pricing line items.
func (o *Order) LineItems() []pricing.LineItem {
	items := make([]pricing.LineItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, pricing.LineItem{SKU: it.SKU, UnitPrice: it.UnitPrice, Quantity: it.Quantity})
	}
	return items
}

// PlaceOrderRequest is the checkout submission.
type PlaceOrderRequest struct {
	DeliveryAddress DeliveryAddress `json:"delivery_address" binding:"required"`
	PaymentMethod   string          `json:"payment_method"`
}

// UpdateStatusRequest moves an order along its lifecycle.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason,omitempty"`
}
