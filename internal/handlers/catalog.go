package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/catalog"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
)

// queryList collects a repeated or comma-separated query parameter.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func parseProductFilter(c *gin.Context) (catalog.Filter, error) {
	f := catalog.Filter{
		CategoryID:      c.Query("category"),
		SaltComposition: queryList(c, "salt"),
		Brands:          queryList(c, "brand"),
		SortBy:          catalog.SortOrder(c.Query("sort")),
	}
	for _, p := range queryList(c, "price") {
		f.PriceRanges = append(f.PriceRanges, catalog.PriceRange(p))
	}
	for _, a := range queryList(c, "availability") {
		f.Availability = append(f.Availability, catalog.Availability(a))
	}
	for _, e := range queryList(c, "expiry") {
		months, err := strconv.Atoi(e)
		if err != nil {
			return catalog.Filter{}, errors.NewValidationError("expiry", "expiry window must be a number of months")
		}
		f.ExpiryMonths = append(f.ExpiryMonths, months)
	}
	return f, nil
}

// ListCategories handles GET /api/v1/categories
func (h *Handlers) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.catalog.Categories()})
}

// ListProducts handles GET /api/v1/products
func (h *Handlers) ListProducts(c *gin.Context) {
	filter, err := parseProductFilter(c)
	if err != nil {
		handleError(c, err)
		return
	}

	products, err := h.catalog.Search(filter)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct handles GET /api/v1/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	product, err := h.catalog.Product(c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":      product,
		"availability": product.Availability(),
	})
}

// QuoteProduct handles GET /api/v1/products/:id/quote
func (h *Handlers) QuoteProduct(c *gin.Context) {
	quantity := 0
	if q := c.Query("quantity"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			handleError(c, errors.NewValidationError("quantity", "quantity must be a non-negative integer"))
			return
		}
		quantity = n
	}

	quote, err := h.pricingService.QuoteProduct(c.Request.Context(), c.Param("id"), quantity)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}
