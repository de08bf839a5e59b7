package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/pricing"
)

func handleError(c *gin.Context, err error) {
	if errors.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	if validationErr, ok := errors.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   validationErr.Message,
			"details": validationErr.Details,
		})
		return
	}

	var inputErr *pricing.InvalidInputError
	if stderrors.As(err, &inputErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   inputErr.Error(),
			"details": map[string]string{inputErr.Field: inputErr.Reason},
		})
		return
	}

	if errors.IsConflict(err) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	_ = c.Error(err)
	logging.Error("Request failed", logging.Fields{
		"request_id": middleware.GetRequestID(c),
		"error":      err.Error(),
	})
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid request body",
		"details": map[string]string{"body": err.Error()},
	})
}
