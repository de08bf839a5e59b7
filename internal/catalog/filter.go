package catalog

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
)

// Availability of a product for ordering.
type Availability string

const (
	AvailabilityInStock  Availability = "in_stock"
	AvailabilityPreOrder Availability = "pre_order"
)

// PriceRange buckets the box price.
type PriceRange string

const (
	PriceUnder100  PriceRange = "under_100"
	Price100To500  PriceRange = "100_500"
	Price500To1000 PriceRange = "500_1000"
	PriceAbove1000 PriceRange = "above_1000"
)

// SortOrder of a product listing.
type SortOrder string

const (
	SortPopularity SortOrder = "popularity"
	SortPriceAsc   SortOrder = "price_asc"
	SortPriceDesc  SortOrder = "price_desc"
	SortExpiry     SortOrder = "expiry"
)

// Filter narrows a product listing. Empty selections match everything.
type Filter struct {
	CategoryID      string
	SaltComposition []string
	Brands          []string
	PriceRanges     []PriceRange
	// ExpiryMonths keeps products expiring at least this many months after Now.
	ExpiryMonths []int
	Availability []Availability
	SortBy       SortOrder
	// Now is the reference time for expiry windows. Zero means time.Now().
	Now time.Time
}

var (
	hundred     = decimal.NewFromInt(100)
	fiveHundred = decimal.NewFromInt(500)
	thousand    = decimal.NewFromInt(1000)
)

// Validate rejects values the listing does not offer.
func (f Filter) Validate() error {
	for _, r := range f.PriceRanges {
		switch r {
		case PriceUnder100, Price100To500, Price500To1000, PriceAbove1000:
		default:
			return errors.NewValidationError("price_range", "unknown price range "+string(r))
		}
	}
	for _, m := range f.ExpiryMonths {
		switch m {
		case 3, 6, 9, 12:
		default:
			return errors.NewValidationError("expiry_window", "expiry window must be 3, 6, 9 or 12 months")
		}
	}
	for _, a := range f.Availability {
		if a != AvailabilityInStock && a != AvailabilityPreOrder {
			return errors.NewValidationError("availability", "unknown availability "+string(a))
		}
	}
	switch f.SortBy {
	case "", SortPopularity, SortPriceAsc, SortPriceDesc, SortExpiry:
	default:
		return errors.NewValidationError("sort_by", "unknown sort order "+string(f.SortBy))
	}
	return nil
}

// Search returns the products matching f, sorted by f.SortBy.
func (c *Catalog) Search(f Filter) ([]Product, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if f.CategoryID != "" {
		if _, err := c.Category(f.CategoryID); err != nil {
			return nil, errors.NewValidationError("category", "unknown category "+f.CategoryID)
		}
	}

	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}

	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if f.matches(p, now) {
			out = append(out, p)
		}
	}

	sortProducts(out, f.SortBy)
	return out, nil
}

func (f Filter) matches(p Product, now time.Time) bool {
	if f.CategoryID != "" && p.CategoryID != f.CategoryID {
		return false
	}
	if len(f.SaltComposition) > 0 && !contains(f.SaltComposition, p.SaltComposition) {
		return false
	}
	if len(f.Brands) > 0 && !contains(f.Brands, p.Brand) {
		return false
	}
	if len(f.PriceRanges) > 0 && !anyRange(f.PriceRanges, p.BoxPrice) {
		return false
	}
	if len(f.Availability) > 0 && !containsAvailability(f.Availability, p.Availability()) {
		return false
	}
	if len(f.ExpiryMonths) > 0 && !withinExpiry(f.ExpiryMonths, p, now) {
		return false
	}
	return true
}

func (r PriceRange) contains(price decimal.Decimal) bool {
	switch r {
	case PriceUnder100:
		return price.LessThan(hundred)
	case Price100To500:
		return price.GreaterThanOrEqual(hundred) && price.LessThanOrEqual(fiveHundred)
	case Price500To1000:
		return price.GreaterThan(fiveHundred) && price.LessThanOrEqual(thousand)
	case PriceAbove1000:
		return price.GreaterThan(thousand)
	}
	return false
}

func anyRange(ranges []PriceRange, price decimal.Decimal) bool {
	for _, r := range ranges {
		if r.contains(price) {
			return true
		}
	}
	return false
}

// withinExpiry matches when the product expires at least the smallest
// selected number of months after now.
func withinExpiry(months []int, p Product, now time.Time) bool {
	expires, err := p.ExpiresAt()
	if err != nil {
		return false
	}
	min := months[0]
	for _, m := range months[1:] {
		if m < min {
			min = m
		}
	}
	return !expires.Before(now.AddDate(0, min, 0))
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func containsAvailability(values []Availability, v Availability) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func sortProducts(products []Product, by SortOrder) {
	var less func(a, b Product) bool
	switch by {
	case SortPriceAsc:
		less = func(a, b Product) bool { return a.PricePerUnit.LessThan(b.PricePerUnit) }
	case SortPriceDesc:
		less = func(a, b Product) bool { return a.PricePerUnit.GreaterThan(b.PricePerUnit) }
	case SortExpiry:
		// Layout is YYYY-MM so string order is date order.
		less = func(a, b Product) bool { return a.Expiry < b.Expiry }
	default:
		less = func(a, b Product) bool { return a.Popularity > b.Popularity }
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

// ToggleSelection adds value to selected, or removes it when already present.
// The input slice is not modified.
func ToggleSelection(selected []string, value string) []string {
	out := make([]string, 0, len(selected)+1)
	found := false
	for _, s := range selected {
		if s == value {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, value)
	}
	return out
}
