package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/catalog"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/pricing"
)

// QuoteItem is one line of an ad hoc quote request.
type QuoteItem struct {
	SKU         string          `json:"sku" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	MinQuantity int             `json:"min_quantity"`
	MaxQuantity int             `json:"max_quantity"`
}

// QuoteRequest prices an arbitrary list of lines without touching any cart.
type QuoteRequest struct {
	Items []QuoteItem `json:"items" binding:"dive"`
}

// ProductQuote prices a single product at a quantity.
type ProductQuote struct {
	Product catalog.Product       `json:"product"`
	Line    pricing.LineItem      `json:"line"`
	Summary pricing.PricingResult `json:"summary"`
}

// PricingService exposes the pricing policy to callers that do not own a cart.
type PricingService struct {
	catalog *catalog.Catalog
	policy  pricing.Policy
}

// NewPricingService creates a new pricing service.
func NewPricingService(cat *catalog.Catalog, policy pricing.Policy) *PricingService {
	return &PricingService{catalog: cat, policy: policy}
}

// Policy returns the policy quotes are computed under.
func (s *PricingService) Policy() pricing.Policy {
	return s.policy
}

// Quote prices req's lines.
func (s *PricingService) Quote(ctx context.Context, req QuoteRequest) (pricing.PricingResult, error) {
	items := make([]pricing.LineItem, 0, len(req.Items))
	for i, it := range req.Items {
		item, err := pricing.NewLineItem(it.SKU, it.UnitPrice, it.Quantity, it.MinQuantity, it.MaxQuantity)
		if err != nil {
			metrics.ObserveQuote(metrics.SourceAdHoc, err)
			return pricing.PricingResult{}, indexItemError(i, err)
		}
		items = append(items, item)
	}

	res, err := s.policy.Quote(items)
	metrics.ObserveQuote(metrics.SourceAdHoc, err)
	return res, err
}

// QuoteProduct prices quantity units of a catalog product. A zero quantity
// quotes the minimum order quantity.
func (s *PricingService) QuoteProduct(ctx context.Context, productID string, quantity int) (*ProductQuote, error) {
	product, err := s.catalog.Product(productID)
	if err != nil {
		return nil, err
	}
	if quantity == 0 {
		quantity = product.MOQ
	}

	line, err := s.catalog.QuoteLine(productID, quantity)
	if err != nil {
		metrics.ObserveQuote(metrics.SourceProduct, err)
		return nil, err
	}

	res, err := s.policy.Quote([]pricing.LineItem{line})
	metrics.ObserveQuote(metrics.SourceProduct, err)
	if err != nil {
		return nil, err
	}
	return &ProductQuote{Product: product, Line: line, Summary: res}, nil
}

func indexItemError(i int, err error) error {
	var inv *pricing.InvalidInputError
	if stderrors.As(err, &inv) {
		return &pricing.InvalidInputError{
			Field:  fmt.Sprintf("items[%d].%s", i, inv.Field),
			Value:  inv.Value,
			Reason: inv.Reason,
		}
	}
	return err
}
