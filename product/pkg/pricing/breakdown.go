// Package pricing computes the display price breakdown shared by the cart,
// checkout and product views. The server stays authoritative for charged
// amounts; these figures are what the client shows before and between syncs.
package pricing

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/product/pkg/attribute"
	"github.com/Alturino/storefront/product/pkg/response"
)

var hundred = decimal.NewFromInt(100)

type Input struct {
	BasePrice          decimal.Decimal
	DiscountPercentage decimal.Decimal
	Quantity           int
	Selection          attribute.Selection
	Attributes         []response.Attribute
}

// Charge is one resolved attribute selection shown in the breakdown.
type Charge struct {
	AttributeID   int64           `json:"attribute_id"`
	AttributeName string          `json:"attribute_name"`
	ValueID       int64           `json:"value_id"`
	Value         string          `json:"value"`
	Surcharge     decimal.Decimal `json:"surcharge"`
}

type Breakdown struct {
	BasePrice           decimal.Decimal `json:"base_price"`
	DiscountPercentage  decimal.Decimal `json:"discount_percentage"`
	DiscountedUnitPrice decimal.Decimal `json:"discounted_unit_price"`
	AttributeSurcharge  decimal.Decimal `json:"attribute_surcharge"`
	FinalUnitPrice      decimal.Decimal `json:"final_unit_price"`
	Quantity            int             `json:"quantity"`
	LineTotal           decimal.Decimal `json:"line_total"`
	DiscountAmount      decimal.Decimal `json:"discount_amount"`
	Charges             []Charge        `json:"charges"`
}

func (b Breakdown) HasDiscount() bool { return b.DiscountPercentage.IsPositive() }

// Calculate never fails: unmatched selections contribute nothing and are left
// out of Charges, out-of-range inputs are clamped.
func Calculate(in Input) Breakdown {
	base := in.BasePrice
	if base.IsNegative() {
		base = decimal.Zero
	}
	discount := clampPercentage(in.DiscountPercentage)
	quantity := in.Quantity
	if quantity < 1 {
		quantity = 1
	}

	discounted := base
	if discount.IsPositive() {
		discounted = base.Mul(hundred.Sub(discount)).Div(hundred)
	}

	charges := Charges(in.Attributes, in.Selection)
	surcharge := decimal.Zero
	for _, c := range charges {
		surcharge = surcharge.Add(c.Surcharge)
	}

	qty := decimal.NewFromInt(int64(quantity))
	final := discounted.Add(surcharge)
	return Breakdown{
		BasePrice:           base,
		DiscountPercentage:  discount,
		DiscountedUnitPrice: discounted,
		AttributeSurcharge:  surcharge,
		FinalUnitPrice:      final,
		Quantity:            quantity,
		LineTotal:           final.Mul(qty),
		DiscountAmount:      base.Sub(discounted).Mul(qty),
		Charges:             charges,
	}
}

func ForProduct(p response.Product, s attribute.Selection, quantity int) Breakdown {
	return Calculate(Input{
		BasePrice:          p.Price,
		DiscountPercentage: p.DiscountPercentage,
		Quantity:           quantity,
		Selection:          s,
		Attributes:         p.Attributes,
	})
}

// Charges resolves every selected value against its attribute definition, in
// attribute-id order.
func Charges(attrs []response.Attribute, s attribute.Selection) []Charge {
	byID := make(map[string]response.Attribute, len(attrs))
	for _, a := range attrs {
		byID[strconv.FormatInt(a.ID, 10)] = a
	}

	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })

	charges := []Charge{}
	for _, k := range keys {
		attr, ok := byID[k]
		if !ok {
			continue
		}
		for _, v := range s[k] {
			opt, ok := attribute.Resolve(attr, v)
			if !ok {
				continue
			}
			charges = append(charges, Charge{
				AttributeID:   attr.ID,
				AttributeName: attr.Name,
				ValueID:       opt.ID,
				Value:         opt.Value,
				Surcharge:     opt.Surcharge(),
			})
		}
	}
	return charges
}

func clampPercentage(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d
}

func lessKey(a, b string) bool {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	if aErr == nil && bErr == nil {
		return ai < bi
	}
	return a < b
}
