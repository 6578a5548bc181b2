package apitest

import (
	"github.com/shopspring/decimal"

	productResponse "github.com/Alturino/storefront/product/pkg/response"
)

// Shirt has a required size with an XL surcharge, an optional gift wrap and
// a 20% offer on a base price of 100.
func Shirt() productResponse.Product {
	return productResponse.Product{
		ID:                 1,
		Name:               "Oxford Shirt",
		Slug:               "oxford-shirt",
		Price:              decimal.NewFromInt(100),
		DiscountPercentage: decimal.NewFromInt(20),
		Currency:           "USD",
		StockQuantity:      5,
		InStock:            true,
		Attributes: []productResponse.Attribute{
			{
				ID:       1,
				Name:     "Size",
				Type:     productResponse.InputSelect,
				Required: true,
				Values: []productResponse.AttributeValue{
					{ID: 5, Value: "M"},
					{ID: 6, Value: "XL", Price: decimal.NewNullDecimal(decimal.NewFromInt(15))},
				},
			},
			{
				ID:   2,
				Name: "Gift wrap",
				Type: productResponse.InputBoolean,
				Values: []productResponse.AttributeValue{
					{ID: 8, Value: "Yes", Price: decimal.NewNullDecimal(decimal.RequireFromString("2.50"))},
					{ID: 9, Value: "No"},
				},
			},
		},
	}
}

// Mug has no attributes and no offer.
func Mug() productResponse.Product {
	return productResponse.Product{
		ID:            2,
		Name:          "Enamel Mug",
		Slug:          "enamel-mug",
		Price:         decimal.RequireFromString("12.50"),
		Currency:      "USD",
		StockQuantity: 10,
		InStock:       true,
	}
}

func SoldOut() productResponse.Product {
	return productResponse.Product{
		ID:            3,
		Name:          "Limited Print",
		Slug:          "limited-print",
		Price:         decimal.NewFromInt(40),
		Currency:      "USD",
		StockQuantity: 0,
		InStock:       false,
	}
}
