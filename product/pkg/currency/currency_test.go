package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSymbol(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{name: "given USD should return dollar", code: "USD", expected: "$"},
		{name: "given lowercase eur should return euro", code: "eur", expected: "€"},
		{name: "given padded code should trim", code: " BDT ", expected: "৳"},
		{name: "given JPY should return yen", code: "JPY", expected: "¥"},
		{name: "given INR should return rupee", code: "INR", expected: "₹"},
		{name: "given NGN should return naira", code: "NGN", expected: "₦"},
		{name: "given KRW should return won", code: "KRW", expected: "₩"},
		{name: "given BRL should return real", code: "BRL", expected: "R$"},
		{name: "given empty code should return default", code: "", expected: DefaultSymbol},
		{name: "given iso code without symbol should return code", code: "CHF", expected: "CHF"},
		{name: "given malformed code should return default", code: "dollars", expected: DefaultSymbol},
		{name: "given unknown code should return default", code: "ZZZ", expected: DefaultSymbol},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, Symbol(test.code))
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$95.00", Format(decimal.NewFromInt(95), "USD"))
	assert.Equal(t, "£12.50", Format(decimal.RequireFromString("12.5"), "GBP"))
}
