package request

import (
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/product/pkg/attribute"
)

// AddCartItem is the body of POST /api/cart/items.
type AddCartItem struct {
	ProductID  int64               `validate:"required,gt=0"  json:"product_id"`
	Quantity   int                 `validate:"required,gte=1" json:"quantity"`
	Attributes attribute.Selection `                          json:"attributes"`
}

func (a AddCartItem) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("productId", a.ProductID).
		Int("quantity", a.Quantity).
		Str("attributes", attribute.Key(a.Attributes))
}

// UpdateCartItem is the body of PUT /api/cart/items/{id}.
type UpdateCartItem struct {
	Quantity int `validate:"required,gte=1" json:"quantity"`
}

// AddToCart is what a browser posts to the storefront service; the product
// is looked up by slug so the stock pre-flight runs against fresh data.
type AddToCart struct {
	ProductSlug string              `validate:"required"       json:"product_slug"`
	Quantity    int                 `validate:"required,gte=1" json:"quantity"`
	Attributes  attribute.Selection `                          json:"attributes"`
}

type UpdateQuantity struct {
	Quantity int `json:"quantity"`
}
