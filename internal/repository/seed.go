package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/pricing"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func seedItem(sku, name, image string, unitPrice string, qty int) models.OrderItem {
	price := decimal.RequireFromString(unitPrice)
	return models.OrderItem{
		SKU:       sku,
		Name:      name,
		Image:     image,
		UnitPrice: price,
		Quantity:  qty,
		LineTotal: price.Mul(decimal.NewFromInt(int64(qty))),
	}
}

// SampleOrders is the demo order history, priced under policy.
func SampleOrders(policy pricing.Policy) ([]*models.Order, error) {
	orders := []*models.Order{
		{
			ID:     "ORD001",
			Status: models.OrderStatusDelivered,
			Items: []models.OrderItem{
				seedItem("1", "Paracetamol 500mg", "https://images.pexels.com/photos/139398/thermometer-headache-pain-pills-139398.jpeg", "2.5", 100),
				seedItem("2", "Amoxicillin 250mg", "https://images.pexels.com/photos/3683098/pexels-photo-3683098.jpeg", "5.0", 50),
			},
			PaymentMethod: models.PaymentMethodUPI,
			DeliveryAddress: models.DeliveryAddress{
				StoreName: "123 Medical Store",
				Address:   "Healthcare Street",
				City:      "City",
				State:     "Maharashtra",
				Pincode:   "123456",
				Phone:     "9876543210",
			},
			CreatedAt: time.Date(2024, 1, 15, 10, 0, 0, 0, ist),
		},
		{
			ID:     "ORD002",
			Status: models.OrderStatusProcessing,
			Items: []models.OrderItem{
				seedItem("5", "Vitamin C 500mg", "https://images.pexels.com/photos/3683098/pexels-photo-3683098.jpeg", "3.0", 200),
			},
			PaymentMethod: models.PaymentMethodNetBanking,
			DeliveryAddress: models.DeliveryAddress{
				StoreName: "456 Pharmacy Lane",
				Address:   "Medical Complex",
				City:      "City",
				State:     "Maharashtra",
				Pincode:   "789012",
				Phone:     "9876543211",
			},
			CreatedAt: time.Date(2024, 1, 18, 10, 0, 0, 0, ist),
		},
	}

	for _, o := range orders {
		res, err := policy.Quote(o.LineItems())
		if err != nil {
			return nil, err
		}
		o.Pricing = res
		o.UpdatedAt = o.CreatedAt
	}
	return orders, nil
}
