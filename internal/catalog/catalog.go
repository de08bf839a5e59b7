// Package catalog holds the storefront's product and category listings and
// the filtering behind the category and product listing screens.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/pricing"
)

const expiryLayout = "2006-01"

// Category is a therapeutic grouping of products.
type Category struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	CountLabel string `json:"count"`
}

// Product is a sellable SKU. Prices are set here and nowhere else.
type Product struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Brand           string              `json:"brand"`
	Image           string              `json:"image"`
	Strength        string              `json:"strength"`
	PackSize        string              `json:"pack_size"`
	SaltComposition string              `json:"salt_composition"`
	CategoryID      string              `json:"category_id"`
	PricePerUnit    decimal.Decimal     `json:"price_per_unit"`
	BoxPrice        decimal.Decimal     `json:"box_price"`
	MOQ             int                 `json:"moq"`
	Discount        string              `json:"discount"`
	Expiry          string              `json:"expiry"`
	Stock           int                 `json:"stock"`
	Popularity      int                 `json:"popularity"`
	Tiers           []pricing.PriceTier `json:"bulk_pricing,omitempty"`
}

// Availability is in_stock when units are on hand, pre_order otherwise.
func (p Product) Availability() Availability {
	if p.Stock > 0 {
		return AvailabilityInStock
	}
	return AvailabilityPreOrder
}

// ExpiresAt returns the first day of the expiry month.
func (p Product) ExpiresAt() (time.Time, error) {
	return time.Parse(expiryLayout, p.Expiry)
}

// Catalog is a read-only product listing. It is safe for concurrent use.
type Catalog struct {
	categories []Category
	products   []Product
	byID       map[string]int
}

// New builds a catalog over the given listings.
func New(categories []Category, products []Product) *Catalog {
	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}
	return &Catalog{
		categories: categories,
		products:   products,
		byID:       byID,
	}
}

// NewSample returns the storefront's built-in sample catalog.
func NewSample() *Catalog {
	return NewSampleAt(time.Now())
}

// NewSampleAt returns the sample catalog with expiries relative to ref.
func NewSampleAt(ref time.Time) *Catalog {
	return New(SampleCategories(), SampleProducts(ref))
}

// Categories lists all categories.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Category returns a category by ID.
func (c *Catalog) Category(id string) (Category, error) {
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat, nil
		}
	}
	return Category{}, errors.NotFoundf("category %s", id)
}

// Product returns a product by ID.
func (c *Catalog) Product(id string) (Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, errors.NotFoundf("product %s", id)
	}
	return c.products[i], nil
}

// UnitPrice returns the bulk tier price for quantity, falling back to the
// list price per unit.
func (p Product) UnitPrice(quantity int) decimal.Decimal {
	if price, ok := pricing.TierPrice(p.Tiers, quantity); ok {
		return price
	}
	return p.PricePerUnit
}

// QuoteLine builds a cart line for quantity units of a product. The MOQ is
// the lower bound and stock on hand, when known, the upper bound.
func (c *Catalog) QuoteLine(productID string, quantity int) (pricing.LineItem, error) {
	p, err := c.Product(productID)
	if err != nil {
		return pricing.LineItem{}, err
	}
	return pricing.NewLineItem(p.ID, p.UnitPrice(quantity), quantity, p.MOQ, p.Stock)
}
