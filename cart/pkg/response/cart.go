package response

import (
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/product/pkg/attribute"
	"github.com/Alturino/storefront/product/pkg/pricing"
	productResponse "github.com/Alturino/storefront/product/pkg/response"
)

// CartLine carries the server computed prices. FinalPrice is the line total.
type CartLine struct {
	ID                  int64                   `json:"id"`
	ProductID           int64                   `json:"product_id"`
	Product             productResponse.Product `json:"product"`
	Quantity            int                     `json:"quantity"`
	Attributes          attribute.Selection     `json:"attributes"`
	UnitPrice           decimal.Decimal         `json:"unit_price"`
	PriceWithAttributes decimal.Decimal         `json:"price_with_attributes"`
	FinalPrice          decimal.Decimal         `json:"final_price"`
	DiscountPercentage  decimal.Decimal         `json:"discount_percentage"`
}

// Breakdown is the display breakdown for the line. A discount reported on
// the line takes precedence over the product's offer.
func (l CartLine) Breakdown() pricing.Breakdown {
	discount := l.DiscountPercentage
	if !discount.IsPositive() {
		discount = l.Product.DiscountPercentage
	}
	return pricing.Calculate(pricing.Input{
		BasePrice:          l.Product.Price,
		DiscountPercentage: discount,
		Quantity:           l.Quantity,
		Selection:          l.Attributes,
		Attributes:         l.Product.Attributes,
	})
}

func (l CartLine) Matches(productID int64, s attribute.Selection) bool {
	return l.productID() == productID && attribute.Equal(l.Attributes, s)
}

func (l CartLine) productID() int64 {
	if l.ProductID != 0 {
		return l.ProductID
	}
	return l.Product.ID
}

type Cart struct {
	Items    []CartLine `json:"items"`
	Currency string     `json:"currency,omitempty"`
}

// Result is what every store mutation reports back to the caller.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type LineView struct {
	CartLine
	Breakdown pricing.Breakdown `json:"breakdown"`
	Display   string            `json:"display_total"`
}

type CartView struct {
	Lines    []LineView      `json:"lines"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
	Display  string          `json:"display_total"`
	Currency string          `json:"currency"`
	Status   string          `json:"status"`
}
