package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/cart"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/catalog"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/pricing"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/repository"
)

type fixture struct {
	catalog  *catalog.Catalog
	repo     *repository.MemoryOrderRepository
	idem     *repository.MemoryIdempotencyStore
	events   *events.MockEventPublisher
	carts    *CartService
	pricing  *PricingService
	checkout *CheckoutService
	orders   *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	policy := pricing.DefaultPolicy()
	seed, err := repository.SampleOrders(policy)
	require.NoError(t, err)

	f := &fixture{
		catalog: catalog.NewSample(),
		repo:    repository.NewMemoryOrderRepository(logging.NewNop(), seed...),
		idem:    repository.NewMemoryIdempotencyStore(time.Hour),
		events:  events.NewMockEventPublisher(),
	}
	f.carts = NewCartService(f.catalog, repository.NewCartStore(cart.DefaultStep, time.Hour), policy)
	f.pricing = NewPricingService(f.catalog, policy)
	f.checkout = NewCheckoutService(f.carts, f.catalog, f.repo, f.idem, f.events, policy)
	f.orders = NewOrderService(f.repo, f.carts, f.catalog, f.events)
	return f
}

func validAddress() models.DeliveryAddress {
	return models.DeliveryAddress{
		StoreName:     "Sharma Medicals",
		Address:       "12 MG Road",
		City:          "Pune",
		State:         "Maharashtra",
		Pincode:       "411001",
		GSTNumber:     "27aapfu0939f1zv",
		ContactPerson: "R. Sharma",
		Phone:         "98765 43210",
	}
}

func intPtr(v int) *int { return &v }
