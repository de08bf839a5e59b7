// Package metrics declares the storefront's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// Cart line sources.
const (
	LineSourceAdd     = "add"
	LineSourceReorder = "reorder"
)

// Quote sources.
const (
	SourceCart    = "cart"
	SourceReview  = "checkout_review"
	SourceOrder   = "checkout_order"
	SourceAdHoc   = "ad_hoc"
	SourceProduct = "product"
)

var (
	quotes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Price quotes computed, by source and result.",
		},
		[]string{"source", "result"},
	)

	adjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quantity_adjustments_total",
			Help:      "Cart quantity adjustments, by outcome.",
		},
		[]string{"outcome"},
	)

	lineAdditions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_line_additions_total",
			Help:      "Products put into carts, by source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	ordersPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders placed, by payment method.",
		},
		[]string{"payment_method"},
	)

	orderValue = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_total_amount",
			Help:      "Order totals in the configured currency.",
			Buckets:   []float64{100, 500, 1000, 2500, 5000, 10000, 25000, 50000},
		},
	)

	idempotentReplays = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_idempotent_replays_total",
			Help:      "Checkout requests answered from a previous placement.",
		},
	)

	statusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_transitions_total",
			Help:      "Order status changes, by target status and result.",
		},
		[]string{"status", "result"},
	)

	events = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Order events published or consumed, by type and result.",
		},
		[]string{"direction", "type", "result"},
	)
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveQuote counts a quote computed for source.
func ObserveQuote(source string, err error) {
	quotes.WithLabelValues(source, result(err)).Inc()
}

func outcome(applied bool) string {
	if applied {
		return "applied"
	}
	return "rejected"
}

// ObserveAdjustment counts a quantity change on an existing cart line.
func ObserveAdjustment(applied bool) {
	adjustments.WithLabelValues(outcome(applied)).Inc()
}

// ObserveLineAdded counts a product put into a cart from source.
func ObserveLineAdded(source string, applied bool) {
	lineAdditions.WithLabelValues(source, outcome(applied)).Inc()
}

// ObserveOrderPlaced counts a placed order and records its total.
func ObserveOrderPlaced(paymentMethod string, total float64) {
	ordersPlaced.WithLabelValues(paymentMethod).Inc()
	orderValue.Observe(total)
}

// ObserveIdempotentReplay counts a checkout answered from the idempotency store.
func ObserveIdempotentReplay() {
	idempotentReplays.Inc()
}

// ObserveStatusTransition counts an order status change attempt.
func ObserveStatusTransition(status string, err error) {
	statusTransitions.WithLabelValues(status, result(err)).Inc()
}

// ObserveEventPublished counts an outgoing event.
func ObserveEventPublished(eventType string, err error) {
	events.WithLabelValues("out", eventType, result(err)).Inc()
}

// ObserveEventConsumed counts an incoming event.
func ObserveEventConsumed(eventType string, err error) {
	events.WithLabelValues("in", eventType, result(err)).Inc()
}
