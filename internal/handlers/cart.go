package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/service"
)

type promoCodeRequest struct {
	Code string `json:"code"`
}

// GetCart handles GET /api/v1/cart
func (h *Handlers) GetCart(c *gin.Context) {
	view, err := h.cartService.Get(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddCartItem handles POST /api/v1/cart/items
func (h *Handlers) AddCartItem(c *gin.Context) {
	var req service.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	change, err := h.cartService.AddItem(c.Request.Context(), middleware.GetSessionID(c), req)
	if err != nil {
		handleError(c, err)
		return
	}

	status := http.StatusCreated
	if !change.Applied {
		status = http.StatusOK
	}
	c.JSON(status, change)
}

// UpdateCartItem handles PATCH /api/v1/cart/items/:sku
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	var req service.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	change, err := h.cartService.UpdateItem(c.Request.Context(), middleware.GetSessionID(c), c.Param("sku"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, change)
}

// IncrementCartItem handles POST /api/v1/cart/items/:sku/increment
func (h *Handlers) IncrementCartItem(c *gin.Context) {
	change, err := h.cartService.Increment(c.Request.Context(), middleware.GetSessionID(c), c.Param("sku"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, change)
}

// DecrementCartItem handles POST /api/v1/cart/items/:sku/decrement
func (h *Handlers) DecrementCartItem(c *gin.Context) {
	change, err := h.cartService.Decrement(c.Request.Context(), middleware.GetSessionID(c), c.Param("sku"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, change)
}

// RemoveCartItem handles DELETE /api/v1/cart/items/:sku
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	view, err := h.cartService.RemoveItem(c.Request.Context(), middleware.GetSessionID(c), c.Param("sku"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ApplyPromoCode handles PUT /api/v1/cart/promo
func (h *Handlers) ApplyPromoCode(c *gin.Context) {
	var req promoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.cartService.ApplyPromoCode(c.Request.Context(), middleware.GetSessionID(c), req.Code)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ClearCart handles DELETE /api/v1/cart
func (h *Handlers) ClearCart(c *gin.Context) {
	view, err := h.cartService.Clear(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
