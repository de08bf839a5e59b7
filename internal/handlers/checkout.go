package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

// HeaderIdempotencyKey makes order placement safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

// PaymentMethods handles GET /api/v1/checkout/payment-methods
func (h *Handlers) PaymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"payment_methods": h.checkoutService.PaymentMethods()})
}

// ReviewCheckout handles POST /api/v1/checkout/review
func (h *Handlers) ReviewCheckout(c *gin.Context) {
	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	review, err := h.checkoutService.Review(c.Request.Context(), middleware.GetSessionID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// PlaceOrder handles POST /api/v1/checkout/orders
func (h *Handlers) PlaceOrder(c *gin.Context) {
	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind request", logging.Fields{"error": err.Error()})
		badRequest(c, err)
		return
	}

	placed, err := h.checkoutService.PlaceOrder(
		c.Request.Context(),
		middleware.GetSessionID(c),
		&req,
		c.GetHeader(HeaderIdempotencyKey),
	)
	if err != nil {
		handleError(c, err)
		return
	}

	status := http.StatusCreated
	if placed.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, placed)
}
