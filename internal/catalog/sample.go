package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/pricing"
)

// SampleCategories is the fixed category list shown on the category screen.
func SampleCategories() []Category {
	return []Category{
		{ID: "1", Name: "Antibiotics", Icon: "capsules", CountLabel: "2,500+ items"},
		{ID: "2", Name: "Pain Relief", Icon: "band-aid", CountLabel: "1,800+ items"},
		{ID: "3", Name: "Cardiac Care", Icon: "heartbeat", CountLabel: "1,200+ items"},
		{ID: "4", Name: "Diabetes Care", Icon: "syringe", CountLabel: "900+ items"},
		{ID: "5", Name: "Respiratory", Icon: "lungs", CountLabel: "800+ items"},
		{ID: "6", Name: "Vitamins", Icon: "pills", CountLabel: "1,500+ items"},
		{ID: "7", Name: "Surgical", Icon: "stethoscope", CountLabel: "700+ items"},
		{ID: "8", Name: "Ayurvedic", Icon: "leaf", CountLabel: "1,000+ items"},
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// expiryIn formats the month that is months after ref's month.
func expiryIn(ref time.Time, months int) string {
	return time.Date(ref.Year(), ref.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC).Format(expiryLayout)
}

// SampleProducts is the fixed product list. Expiry months are offsets from
// ref so shelf-life filters keep matching as the clock moves.
func SampleProducts(ref time.Time) []Product {
	return []Product{
		{
			ID:              "1",
			Name:            "Paracetamol 500mg",
			Brand:           "Cipla",
			Image:           "https://images.pexels.com/photos/139398/thermometer-headache-pain-pills-139398.jpeg",
			Strength:        "500mg",
			PackSize:        "10 tablets/strip",
			SaltComposition: "Paracetamol",
			CategoryID:      "2",
			PricePerUnit:    d("2.5"),
			BoxPrice:        d("225"),
			MOQ:             100,
			Discount:        "10%",
			Expiry:          expiryIn(ref, 11),
			Stock:           1000,
			Popularity:      98,
			Tiers: []pricing.PriceTier{
				{MinQuantity: 100, UnitPrice: d("2.5")},
				{MinQuantity: 500, UnitPrice: d("2.2")},
				{MinQuantity: 1000, UnitPrice: d("2.0")},
				{MinQuantity: 5000, UnitPrice: d("1.8")},
			},
		},
		{
			ID:              "2",
			Name:            "Amoxicillin",
			Brand:           "Sun Pharma",
			Image:           "https://images.pexels.com/photos/3683098/pexels-photo-3683098.jpeg",
			Strength:        "250mg",
			PackSize:        "6 tablets/strip",
			SaltComposition: "Amoxicillin",
			CategoryID:      "1",
			PricePerUnit:    d("5.0"),
			BoxPrice:        d("450"),
			MOQ:             50,
			Discount:        "15%",
			Expiry:          expiryIn(ref, 9),
			Stock:           500,
			Popularity:      91,
		},
		{
			ID:              "3",
			Name:            "Metformin 500mg",
			Brand:           "Dr. Reddy's",
			Image:           "https://images.pexels.com/photos/3683098/pexels-photo-3683098.jpeg",
			Strength:        "500mg",
			PackSize:        "15 tablets/strip",
			SaltComposition: "Metformin",
			CategoryID:      "4",
			PricePerUnit:    d("1.2"),
			BoxPrice:        d("90"),
			MOQ:             200,
			Discount:        "5%",
			Expiry:          expiryIn(ref, 17),
			Stock:           5000,
			Popularity:      77,
		},
		{
			ID:              "4",
			Name:            "Omeprazole 20mg",
			Brand:           "Mankind",
			Image:           "https://images.pexels.com/photos/139398/thermometer-headache-pain-pills-139398.jpeg",
			Strength:        "20mg",
			PackSize:        "10 capsules/strip",
			SaltComposition: "Omeprazole",
			CategoryID:      "2",
			PricePerUnit:    d("3.4"),
			BoxPrice:        d("680"),
			MOQ:             100,
			Discount:        "8%",
			Expiry:          expiryIn(ref, 14),
			Stock:           0,
			Popularity:      64,
		},
		{
			ID:              "5",
			Name:            "Vitamin C 500mg",
			Brand:           "Mankind",
			Image:           "https://images.pexels.com/photos/3683098/pexels-photo-3683098.jpeg",
			Strength:        "500mg",
			PackSize:        "20 tablets/strip",
			SaltComposition: "Ascorbic Acid",
			CategoryID:      "6",
			PricePerUnit:    d("3.0"),
			BoxPrice:        d("1200"),
			MOQ:             100,
			Discount:        "12%",
			Expiry:          expiryIn(ref, 20),
			Stock:           2000,
			Popularity:      85,
			Tiers: []pricing.PriceTier{
				{MinQuantity: 100, UnitPrice: d("3.0")},
				{MinQuantity: 1000, UnitPrice: d("2.75")},
			},
		},
	}
}
