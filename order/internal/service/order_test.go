package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/api"
	"github.com/Alturino/storefront/internal/apitest"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/shopper"
	"github.com/Alturino/storefront/order/pkg/request"
	userRequest "github.com/Alturino/storefront/user/pkg/request"
)

func newShopper(t *testing.T) *shopper.Shopper {
	t.Helper()
	server := apitest.NewServer(apitest.Mug())
	t.Cleanup(server.Close)
	registry := shopper.NewRegistry(api.New(server.URL, nil, api.WithHTTPClient(server.Client())), nil, nil)
	s, err := registry.Resolve(context.Background(), "", "")
	require.NoError(t, err)
	return s
}

func addMugs(t *testing.T, s *shopper.Shopper, quantity int) {
	t.Helper()
	c := context.Background()
	require.NoError(t, s.Ready(c))
	mug, err := s.Client.GetProduct(c, "enamel-mug")
	require.NoError(t, err)
	_, err = s.Cart.AddToCart(c, mug, quantity, nil)
	require.NoError(t, err)
}

func TestOrderServiceSummary(t *testing.T) {
	tests := []struct {
		name             string
		quantity         int
		couponCode       string
		expectedSubtotal string
		expectedShipping string
		expectedTotal    string
		expectedValid    *bool
		expectedMessage  string
	}{
		{
			name:             "given cart below free shipping should charge shipping",
			quantity:         4,
			expectedSubtotal: "50",
			expectedShipping: "5",
			expectedTotal:    "55",
		},
		{
			name:             "given valid coupon should subtract discount",
			quantity:         4,
			couponCode:       "save10",
			expectedSubtotal: "50",
			expectedShipping: "5",
			expectedTotal:    "50",
			expectedValid:    boolPtr(true),
		},
		{
			name:             "given unknown coupon should report it without failing",
			quantity:         4,
			couponCode:       "nope",
			expectedSubtotal: "50",
			expectedShipping: "5",
			expectedTotal:    "55",
			expectedValid:    boolPtr(false),
			expectedMessage:  "This coupon does not exist or has expired.",
		},
		{
			name:             "given cart at free shipping threshold should not charge shipping",
			quantity:         8,
			expectedSubtotal: "100",
			expectedShipping: "0",
			expectedTotal:    "100",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := newShopper(t)
			addMugs(t, s, test.quantity)

			checkout, _, err := NewOrderService().Summary(context.Background(), s, request.Checkout{CouponCode: test.couponCode})

			require.NoError(t, err)
			assert.Equal(t, test.expectedSubtotal, checkout.Subtotal.String())
			assert.Equal(t, test.expectedShipping, checkout.Shipping.String())
			assert.Equal(t, test.expectedTotal, checkout.Total.String())
			if test.expectedValid == nil {
				assert.Nil(t, checkout.Coupon)
				return
			}
			require.NotNil(t, checkout.Coupon)
			assert.Equal(t, *test.expectedValid, checkout.Coupon.Valid)
			assert.Equal(t, test.expectedMessage, checkout.Coupon.Message)
		})
	}
}

func TestOrderServicePlace(t *testing.T) {
	s := newShopper(t)
	svc := NewOrderService()
	c := context.Background()

	_, err := svc.Place(c, s, request.CreateOrder{ShippingAddressID: 1, PaymentMethod: "cod"})
	assert.ErrorIs(t, err, commonErrors.ErrEmptyCart)

	address, err := s.Client.CreateAddress(c, userRequest.ShippingAddress{
		FullName: "Ada Lovelace", Phone: "+4420", Line1: "1 Main", City: "London", PostalCode: "N1", Country: "GB",
	})
	require.NoError(t, err)
	addMugs(t, s, 4)

	checkout, err := svc.Place(c, s, request.CreateOrder{ShippingAddressID: address.ID, PaymentMethod: "cod", CouponCode: "SAVE10"})
	require.NoError(t, err)
	require.NotNil(t, checkout.Order)
	assert.Equal(t, "45", checkout.Order.Total.String())
	assert.Empty(t, s.Cart.Lines())

	found, err := svc.FindOrder(c, s, request.FindOrderById{OrderId: checkout.Order.ID})
	require.NoError(t, err)
	assert.Equal(t, checkout.Order.OrderNumber, found.OrderNumber)

	_, err = svc.FindOrder(c, s, request.FindOrderById{OrderId: 99})
	assert.ErrorIs(t, err, commonErrors.ErrNotFound)
}

func TestOrderServicePaymentMethods(t *testing.T) {
	s := newShopper(t)

	methods, err := NewOrderService().PaymentMethods(context.Background(), s)

	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "cod", methods[0].Key)
}

func boolPtr(b bool) *bool { return &b }
