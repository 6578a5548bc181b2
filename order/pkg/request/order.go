package request

import (
	"github.com/rs/zerolog"
)

type CreateOrder struct {
	ShippingAddressID int64  `validate:"required,gt=0" json:"shipping_address_id"`
	PaymentMethod     string `validate:"required"      json:"payment_method"`
	CouponCode        string `validate:"omitempty"     json:"coupon_code,omitempty"`
	Notes             string `validate:"omitempty"     json:"notes,omitempty"`
}

func (o CreateOrder) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("shippingAddressId", o.ShippingAddressID).
		Str("paymentMethod", o.PaymentMethod).
		Str("couponCode", o.CouponCode)
}

type ValidateCoupon struct {
	Code     string `validate:"required" json:"code"`
	Subtotal string `validate:"required,price" json:"subtotal"`
}

// Checkout previews the order for the current cart.
type Checkout struct {
	CouponCode string `validate:"omitempty,max=64" json:"coupon_code,omitempty"`
}

type FindOrderById struct {
	OrderId int64 `validate:"required,gt=0"`
}
