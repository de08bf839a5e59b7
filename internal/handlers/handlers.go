package handlers

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/catalog"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/service"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Handlers holds all HTTP handlers for the storefront service.
type Handlers struct {
	catalog         *catalog.Catalog
	pricingService  *service.PricingService
	cartService     *service.CartService
	checkoutService *service.CheckoutService
	orderService    *service.OrderService
	config          *config.Config
	checks          map[string]ReadinessCheck
	logger          *logging.LoggerV2
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	cat *catalog.Catalog,
	pricingService *service.PricingService,
	cartService *service.CartService,
	checkoutService *service.CheckoutService,
	orderService *service.OrderService,
	cfg *config.Config,
	checks map[string]ReadinessCheck,
) *Handlers {
	return &Handlers{
		catalog:         cat,
		pricingService:  pricingService,
		cartService:     cartService,
		checkoutService: checkoutService,
		orderService:    orderService,
		config:          cfg,
		checks:          checks,
		logger:          logging.NewLoggerV2("handlers"),
	}
}
