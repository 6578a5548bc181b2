package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/internal/api"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/shopper"
	"github.com/Alturino/storefront/order/internal/common/otel"
	"github.com/Alturino/storefront/order/pkg/request"
	"github.com/Alturino/storefront/order/pkg/response"
)

type OrderService struct{}

func NewOrderService() OrderService {
	return OrderService{}
}

// Summary previews the order of the current cart. An invalid coupon is
// reported on the summary instead of failing it.
func (svc OrderService) Summary(
	c context.Context,
	s *shopper.Shopper,
	param request.Checkout,
) (response.Checkout, response.CartSettings, error) {
	c, span := otel.Tracer.Start(c, "OrderService Summary")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService Summary").
		Str(log.KeyCouponCode, param.CouponCode).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "loading cart").Logger()
	logger.Trace().Msg("loading cart")
	if err := s.Ready(logger.WithContext(c)); err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, response.CartSettings{}, err
	}
	snapshot := s.Cart.Snapshot()
	logger.Trace().Int(log.KeyCartLines, len(snapshot.Lines)).Msg("loaded cart")

	logger = logger.With().Str(log.KeyProcess, "getting cart settings").Logger()
	logger.Trace().Msg("getting cart settings")
	settings, err := s.Client.CartSettings(c)
	if err != nil {
		err = fmt.Errorf("failed getting cart settings with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, response.CartSettings{}, err
	}
	logger.Trace().Msg("got cart settings")

	checkout := response.Checkout{
		Cart:     snapshot.View(),
		Subtotal: snapshot.Total,
		Shipping: shipping(settings, snapshot.Total, len(snapshot.Lines)),
	}

	if param.CouponCode != "" && len(snapshot.Lines) > 0 {
		logger = logger.With().Str(log.KeyProcess, "validating coupon").Logger()
		logger.Trace().Msg("validating coupon")
		coupon, err := s.Client.ValidateCoupon(c, request.ValidateCoupon{
			Code:     param.CouponCode,
			Subtotal: snapshot.Total.String(),
		})
		if err != nil {
			logger.Warn().Err(err).Msg("coupon rejected")
			coupon = response.Coupon{Code: param.CouponCode, Valid: false, Message: api.UserMessage(err)}
		}
		checkout.Coupon = &coupon
		logger.Trace().Bool("valid", coupon.Valid).Msg("validated coupon")
	}

	checkout.Total = total(checkout)
	logger.Debug().Str(log.KeyCartTotal, checkout.Total.String()).Msg("summarized checkout")

	return checkout, settings, nil
}

// Place submits the order and re-syncs the cart the API emptied.
func (svc OrderService) Place(
	c context.Context,
	s *shopper.Shopper,
	param request.CreateOrder,
) (response.Checkout, error) {
	c, span := otel.Tracer.Start(c, "OrderService Place")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService Place").
		Object("order", param).
		Logger()

	checkout, settings, err := svc.Summary(logger.WithContext(c), s, request.Checkout{CouponCode: param.CouponCode})
	if err != nil {
		err = fmt.Errorf("failed summarizing checkout with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	if len(checkout.Cart.Lines) == 0 {
		err := fmt.Errorf("failed placing order with error=%w", commonErrors.ErrEmptyCart)
		commonErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		return checkout, err
	}
	if !settings.GuestCheckout && !s.Session.State().Authenticated() {
		err := fmt.Errorf("failed placing order with error=%w", commonErrors.ErrGuestCheckout)
		commonErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		return checkout, err
	}
	if checkout.Coupon != nil && !checkout.Coupon.Valid {
		logger.Debug().Msg("dropping rejected coupon")
		param.CouponCode = ""
	}

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Info().Msg("creating order")
	order, err := s.Client.CreateOrder(c, param)
	if err != nil {
		err = fmt.Errorf("failed creating order with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return checkout, err
	}
	logger = logger.With().Int64(log.KeyOrderID, order.ID).Logger()
	logger.Info().Str("orderNumber", order.OrderNumber).Msg("created order")

	logger = logger.With().Str(log.KeyProcess, "syncing cart").Logger()
	if err := s.Cart.Load(logger.WithContext(c)); err != nil {
		logger.Warn().Err(err).Msg("failed syncing cart after order")
	}
	checkout.Order = &order

	return checkout, nil
}

func (svc OrderService) FindOrder(c context.Context, s *shopper.Shopper, param request.FindOrderById) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrder").
		Int64(log.KeyOrderID, param.OrderId).
		Str(log.KeyProcess, "finding order").
		Logger()

	logger.Trace().Msg("finding order")
	order, err := s.Client.GetOrder(c, param.OrderId)
	if err != nil {
		err = fmt.Errorf("failed finding orderId=%d with error=%w", param.OrderId, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Trace().Msg("found order")

	return order, nil
}

// PaymentMethods lists the enabled methods only.
func (svc OrderService) PaymentMethods(c context.Context, s *shopper.Shopper) ([]response.PaymentMethod, error) {
	c, span := otel.Tracer.Start(c, "OrderService PaymentMethods")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderService PaymentMethods").Logger()

	settings, err := s.Client.PaymentSettings(c)
	if err != nil {
		err = fmt.Errorf("failed getting payment settings with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	methods := []response.PaymentMethod{}
	for _, m := range settings.Methods {
		if m.Enabled {
			methods = append(methods, m)
		}
	}
	return methods, nil
}

func shipping(settings response.CartSettings, subtotal decimal.Decimal, lines int) decimal.Decimal {
	if lines == 0 {
		return decimal.Zero
	}
	if settings.FreeShippingAbove.IsPositive() && subtotal.GreaterThanOrEqual(settings.FreeShippingAbove) {
		return decimal.Zero
	}
	return settings.ShippingCost
}

func total(checkout response.Checkout) decimal.Decimal {
	t := checkout.Subtotal.Add(checkout.Shipping)
	if checkout.Coupon != nil && checkout.Coupon.Valid {
		t = t.Sub(checkout.Coupon.DiscountAmount)
	}
	if t.IsNegative() {
		return decimal.Zero
	}
	return t
}
