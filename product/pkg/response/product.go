package response

import (
	"time"

	"github.com/shopspring/decimal"
)

type InputType string

const (
	InputSelect   InputType = "select"
	InputDropdown InputType = "dropdown"
	InputBoolean  InputType = "boolean"
	InputText     InputType = "text"
	InputNumber   InputType = "number"
	InputDate     InputType = "date"
)

// HasOptions reports whether values of this input type are picked from Values.
func (t InputType) HasOptions() bool {
	return t == InputSelect || t == InputDropdown
}

type AttributeValue struct {
	ID       int64               `json:"id"`
	Value    string              `json:"value"`
	RawValue string              `json:"raw_value,omitempty"`
	Price    decimal.NullDecimal `json:"price"`
}

// Surcharge is the positive price adjustment of the option, zero otherwise.
func (v AttributeValue) Surcharge() decimal.Decimal {
	if !v.Price.Valid || !v.Price.Decimal.IsPositive() {
		return decimal.Zero
	}
	return v.Price.Decimal
}

type Attribute struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Type     InputType        `json:"type"`
	Required bool             `json:"required"`
	Values   []AttributeValue `json:"values"`
}

type Product struct {
	ID                 int64           `json:"id"                  redis:"id"`
	Name               string          `json:"name"                redis:"name"`
	Slug               string          `json:"slug"                redis:"slug"`
	Price              decimal.Decimal `json:"price"               redis:"price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" redis:"discount_percentage"`
	Currency           string          `json:"currency,omitempty"  redis:"currency"`
	StockQuantity      int             `json:"stock_quantity"      redis:"stock_quantity"`
	InStock            bool            `json:"in_stock"            redis:"in_stock"`
	Attributes         []Attribute     `json:"attributes"          redis:"-"`
	CreatedAt          time.Time       `json:"created_at"          redis:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"          redis:"updated_at"`
}

func (p Product) Attribute(id int64) (Attribute, bool) {
	for _, a := range p.Attributes {
		if a.ID == id {
			return a, true
		}
	}
	return Attribute{}, false
}

// Available is the stock a client-side pre-flight may rely on.
func (p Product) Available() int {
	if !p.InStock || p.StockQuantity < 0 {
		return 0
	}
	return p.StockQuantity
}

type ProductPage struct {
	Products    []Product `json:"products"`
	CurrentPage int       `json:"current_page"`
	LastPage    int       `json:"last_page"`
	Total       int       `json:"total"`
}

type Review struct {
	ID        int64     `json:"id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type FilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type Filter struct {
	Key     string         `json:"key"`
	Label   string         `json:"label"`
	Type    string         `json:"type"`
	Options []FilterOption `json:"options"`
}
