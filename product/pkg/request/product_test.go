package request

import (
	"net/url"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestListProductsQuery(t *testing.T) {
	minPrice := decimal.RequireFromString("10.5")
	tests := []struct {
		name     string
		req      ListProducts
		expected string
	}{
		{
			name:     "given zero value should produce empty query",
			req:      ListProducts{},
			expected: "",
		},
		{
			name:     "given every filter should encode sorted query",
			req:      ListProducts{Search: "shirt", Category: "men", MinPrice: &minPrice, Sort: "price_asc", Page: 2},
			expected: "category=men&min_price=10.5&page=2&search=shirt&sort=price_asc",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.req.Query().Encode())
		})
	}
}

func TestListProductsValidate(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	assert.NoError(t, validate.Struct(ListProducts{Sort: "newest"}))
	assert.Error(t, validate.Struct(ListProducts{Sort: "random"}))
	assert.Error(t, validate.Struct(CreateReview{Rating: 6, Comment: "great"}))
}

func TestParseListProducts(t *testing.T) {
	tests := []struct {
		name        string
		query       url.Values
		expected    string
		expectedErr bool
	}{
		{
			name:     "given encoded query should round trip",
			query:    url.Values{"search": {"shirt"}, "min_price": {"10.5"}, "page": {"2"}, "per_page": {"20"}},
			expected: "min_price=10.5&page=2&per_page=20&search=shirt",
		},
		{
			name:        "given malformed price should return error",
			query:       url.Values{"max_price": {"cheap"}},
			expectedErr: true,
		},
		{
			name:        "given malformed page should return error",
			query:       url.Values{"page": {"two"}},
			expectedErr: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l, err := ParseListProducts(test.query)
			if test.expectedErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.expected, l.Query().Encode())
		})
	}
}
