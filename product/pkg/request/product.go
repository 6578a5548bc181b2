package request

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/product/pkg/attribute"
)

// ListProducts holds the collection filters. Zero values are left out of
// the query string.
type ListProducts struct {
	Search   string           `validate:"omitempty"                                          json:"search,omitempty"`
	Category string           `validate:"omitempty"                                          json:"category,omitempty"`
	MinPrice *decimal.Decimal `validate:"omitempty"                                          json:"min_price,omitempty"`
	MaxPrice *decimal.Decimal `validate:"omitempty"                                          json:"max_price,omitempty"`
	Sort     string           `validate:"omitempty,oneof=newest price_asc price_desc popular" json:"sort,omitempty"`
	Page     int              `validate:"gte=0"                                              json:"page,omitempty"`
	PerPage  int              `validate:"gte=0,lte=100"                                      json:"per_page,omitempty"`
}

func (l ListProducts) Query() url.Values {
	q := url.Values{}
	if l.Search != "" {
		q.Set("search", l.Search)
	}
	if l.Category != "" {
		q.Set("category", l.Category)
	}
	if l.MinPrice != nil {
		q.Set("min_price", l.MinPrice.String())
	}
	if l.MaxPrice != nil {
		q.Set("max_price", l.MaxPrice.String())
	}
	if l.Sort != "" {
		q.Set("sort", l.Sort)
	}
	if l.Page > 0 {
		q.Set("page", strconv.Itoa(l.Page))
	}
	if l.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(l.PerPage))
	}
	return q
}

// ParseListProducts reads the filters back from a query string.
func ParseListProducts(q url.Values) (ListProducts, error) {
	l := ListProducts{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	}
	for key, dst := range map[string]**decimal.Decimal{"min_price": &l.MinPrice, "max_price": &l.MaxPrice} {
		if v := q.Get(key); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return ListProducts{}, fmt.Errorf("failed parsing %s=%s with error=%w", key, v, err)
			}
			*dst = &d
		}
	}
	for key, dst := range map[string]*int{"page": &l.Page, "per_page": &l.PerPage} {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return ListProducts{}, fmt.Errorf("failed parsing %s=%s with error=%w", key, v, err)
			}
			*dst = n
		}
	}
	return l, nil
}

func (l ListProducts) MarshalZerologObject(e *zerolog.Event) {
	e.Str("query", l.Query().Encode())
}

type CreateReview struct {
	Rating  int    `validate:"required,gte=1,lte=5" json:"rating"`
	Comment string `validate:"required,max=2000"    json:"comment"`
}

// Quote asks for the price of a configuration without touching the cart.
type Quote struct {
	Quantity   int                 `validate:"gte=0" json:"quantity"`
	Attributes attribute.Selection `                 json:"attributes"`
}
