package response

import (
	"time"

	"github.com/shopspring/decimal"

	cartResponse "github.com/Alturino/storefront/cart/pkg/response"
)

type Order struct {
	ID             int64           `json:"id"`
	OrderNumber    string          `json:"order_number"`
	Status         string          `json:"status"`
	PaymentStatus  string          `json:"payment_status"`
	PaymentMethod  string          `json:"payment_method"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency"`
	CouponCode     string          `json:"coupon_code,omitempty"`
	Items          []OrderItem     `json:"items"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

type Coupon struct {
	Code           string          `json:"code"`
	Valid          bool            `json:"valid"`
	DiscountType   string          `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Message        string          `json:"message,omitempty"`
}

type PaymentMethod struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

type PaymentSettings struct {
	Currency string          `json:"currency"`
	Methods  []PaymentMethod `json:"methods"`
}

type CartSettings struct {
	Currency          string          `json:"currency"`
	ShippingCost      decimal.Decimal `json:"shipping_cost"`
	FreeShippingAbove decimal.Decimal `json:"free_shipping_above"`
	MinOrderAmount    decimal.Decimal `json:"min_order_amount"`
	GuestCheckout     bool            `json:"guest_checkout"`
}

// Checkout is the summary shown before an order is placed. Figures other
// than Subtotal are display estimates; the placed Order is authoritative.
type Checkout struct {
	Cart     cartResponse.CartView `json:"cart"`
	Subtotal decimal.Decimal       `json:"subtotal"`
	Coupon   *Coupon               `json:"coupon,omitempty"`
	Shipping decimal.Decimal       `json:"shipping"`
	Total    decimal.Decimal       `json:"total"`
	Order    *Order                `json:"order,omitempty"`
}
