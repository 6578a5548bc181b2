package attribute

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Alturino/storefront/product/pkg/response"
)

var color = response.Attribute{
	ID:       1,
	Name:     "Color",
	Type:     response.InputSelect,
	Required: true,
	Values: []response.AttributeValue{
		{ID: 5, Value: "Red", RawValue: "red"},
		{ID: 6, Value: "Blue", Price: decimal.NewNullDecimal(decimal.NewFromInt(15))},
		{ID: 7, Value: "42"},
	},
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		value      Value
		expectedID int64
		found      bool
	}{
		{name: "given numeric id should match by id", value: ID(6), expectedID: 6, found: true},
		{name: "given numeric string should match by id", value: Text("5"), expectedID: 5, found: true},
		{name: "given raw value should match case-insensitively", value: Text("RED"), expectedID: 5, found: true},
		{name: "given display value should match case-insensitively", value: Text(" blue "), expectedID: 6, found: true},
		{name: "given numeric string without id match should fall back to display value", value: Text("42"), expectedID: 7, found: true},
		{name: "given unknown id should not match", value: ID(99), found: false},
		{name: "given unknown text should not match", value: Text("Green"), found: false},
		{name: "given empty text should not match", value: Text(""), found: false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			opt, ok := Resolve(color, test.value)

			assert.Equal(t, test.found, ok)
			if test.found {
				assert.Equal(t, test.expectedID, opt.ID)
			}
		})
	}
}

func TestMissing(t *testing.T) {
	giftWrap := response.Attribute{ID: 2, Name: "Gift wrap", Type: response.InputBoolean}
	engraving := response.Attribute{ID: 3, Name: "Engraving", Type: response.InputText, Required: true}
	attrs := []response.Attribute{color, giftWrap, engraving}

	missing := Missing(attrs, Selection{}.Set(1, ID(5)).Set(3, Text("  ")))

	assert.Len(t, missing, 1)
	assert.Equal(t, "Engraving", missing[0].Name)
	assert.Empty(t, Missing(attrs, Selection{}.Set(1, ID(5)).Set(3, Text("A"))))
}
