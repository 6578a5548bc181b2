package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Alturino/storefront/order/pkg/request"
	"github.com/Alturino/storefront/order/pkg/response"
	userRequest "github.com/Alturino/storefront/user/pkg/request"
	userResponse "github.com/Alturino/storefront/user/pkg/response"
)

func (cl *Client) ListAddresses(c context.Context) ([]userResponse.ShippingAddress, error) {
	addresses := []userResponse.ShippingAddress{}
	_, err := cl.do(c, call{method: http.MethodGet, path: "/api/shipping-addresses"}, &addresses)
	return addresses, err
}

func (cl *Client) CreateAddress(c context.Context, param userRequest.ShippingAddress) (userResponse.ShippingAddress, error) {
	address := userResponse.ShippingAddress{}
	_, err := cl.do(c, call{method: http.MethodPost, path: "/api/shipping-addresses", body: param}, &address)
	return address, err
}

func (cl *Client) UpdateAddress(c context.Context, id int64, param userRequest.ShippingAddress) (userResponse.ShippingAddress, error) {
	address := userResponse.ShippingAddress{}
	_, err := cl.do(c, call{method: http.MethodPut, path: "/api/shipping-addresses/" + strconv.FormatInt(id, 10), body: param}, &address)
	return address, err
}

func (cl *Client) DeleteAddress(c context.Context, id int64) error {
	_, err := cl.do(c, call{method: http.MethodDelete, path: "/api/shipping-addresses/" + strconv.FormatInt(id, 10)}, nil)
	return err
}

func (cl *Client) PaymentSettings(c context.Context) (response.PaymentSettings, error) {
	settings := response.PaymentSettings{}
	_, err := cl.do(c, call{method: http.MethodGet, path: "/api/payment-settings"}, &settings)
	return settings, err
}

func (cl *Client) CartSettings(c context.Context) (response.CartSettings, error) {
	settings := response.CartSettings{}
	_, err := cl.do(c, call{method: http.MethodGet, path: "/api/cart-settings"}, &settings)
	return settings, err
}

func (cl *Client) ValidateCoupon(c context.Context, param request.ValidateCoupon) (response.Coupon, error) {
	coupon := response.Coupon{Code: param.Code}
	_, err := cl.do(c, call{method: http.MethodPost, path: "/api/coupons/validate", body: param}, &coupon)
	return coupon, err
}

func (cl *Client) CreateOrder(c context.Context, param request.CreateOrder) (response.Order, error) {
	order := response.Order{}
	_, err := cl.do(c, call{method: http.MethodPost, path: "/api/orders", body: param}, &order)
	return order, err
}

func (cl *Client) GetOrder(c context.Context, id int64) (response.Order, error) {
	order := response.Order{}
	_, err := cl.do(c, call{method: http.MethodGet, path: "/api/orders/" + strconv.FormatInt(id, 10)}, &order)
	return order, err
}
