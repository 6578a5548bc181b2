package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/cart/internal/common/otel"
	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/pkg/response"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/shopper"
	"github.com/Alturino/storefront/product/pkg/attribute"
)

// CartService drives the cart store of one shopper. Products are read
// uncached through the shopper's client so the stock pre-flight sees current
// figures.
type CartService struct{}

func NewCartService() CartService {
	return CartService{}
}

func (svc CartService) View(c context.Context, s *shopper.Shopper) (response.CartView, error) {
	c, span := otel.Tracer.Start(c, "CartService View")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService View").
		Str(log.KeySessionID, s.Session.SessionID()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "loading cart").Logger()
	logger.Trace().Msg("loading cart")
	if err := s.Ready(logger.WithContext(c)); err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartView{}, err
	}
	view := s.Cart.Snapshot().View()
	logger.Trace().Int(log.KeyCartLines, len(view.Lines)).Msg("loaded cart")

	return view, nil
}

func (svc CartService) Reload(c context.Context, s *shopper.Shopper) (response.CartView, error) {
	c, span := otel.Tracer.Start(c, "CartService Reload")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartService Reload").Logger()
	if err := s.Cart.Load(logger.WithContext(c)); err != nil {
		err = fmt.Errorf("failed reloading cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartView{}, err
	}
	return s.Cart.Snapshot().View(), nil
}

func (svc CartService) Add(
	c context.Context,
	s *shopper.Shopper,
	param request.AddToCart,
) (response.Result, error) {
	c, span := otel.Tracer.Start(c, "CartService Add")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Add").
		Str(log.KeyProductSlug, param.ProductSlug).
		Int(log.KeyQuantity, param.Quantity).
		Str(log.KeyAttributes, attribute.Key(param.Attributes)).
		Logger()

	if err := s.Ready(logger.WithContext(c)); err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Result{Success: false, Message: "Could not load your cart."}, err
	}

	logger = logger.With().Str(log.KeyProcess, "getting product").Logger()
	logger.Trace().Msg("getting product")
	product, err := s.Client.GetProduct(c, param.ProductSlug)
	if err != nil {
		err = fmt.Errorf("failed getting product slug=%s with error=%w", param.ProductSlug, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Result{Success: false, Message: "Product is no longer available."}, err
	}
	logger = logger.With().Int64(log.KeyProductID, product.ID).Logger()
	logger.Trace().Msg("got product")

	logger = logger.With().Str(log.KeyProcess, "adding to cart").Logger()
	logger.Debug().Msg("adding to cart")
	result, err := s.Cart.AddToCart(logger.WithContext(c), product, param.Quantity, param.Attributes)
	if err != nil {
		err = fmt.Errorf("failed adding to cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return result, err
	}
	logger.Info().Msg("added to cart")

	return result, nil
}

// Update sets the quantity of a line. A quantity below 1 is rejected by the
// store; removal goes through Remove.
func (svc CartService) Update(
	c context.Context,
	s *shopper.Shopper,
	lineID int64,
	param request.UpdateQuantity,
) (response.Result, error) {
	c, span := otel.Tracer.Start(c, "CartService Update")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Update").
		Int64(log.KeyCartLineID, lineID).
		Int(log.KeyQuantity, param.Quantity).
		Logger()

	if err := s.Ready(logger.WithContext(c)); err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Result{Success: false, Message: "Could not load your cart."}, err
	}

	logger = logger.With().Str(log.KeyProcess, "updating quantity").Logger()
	logger.Debug().Msg("updating quantity")
	result, err := s.Cart.UpdateQuantity(logger.WithContext(c), lineID, param.Quantity)
	if err != nil {
		err = fmt.Errorf("failed updating quantity with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return result, err
	}
	logger.Info().Msg("updated quantity")

	return result, nil
}

func (svc CartService) Remove(c context.Context, s *shopper.Shopper, lineID int64) (response.Result, error) {
	c, span := otel.Tracer.Start(c, "CartService Remove")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Remove").
		Int64(log.KeyCartLineID, lineID).
		Logger()

	if err := s.Ready(logger.WithContext(c)); err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Result{Success: false, Message: "Could not load your cart."}, err
	}

	logger = logger.With().Str(log.KeyProcess, "removing line").Logger()
	logger.Debug().Msg("removing line")
	result, err := s.Cart.RemoveFromCart(logger.WithContext(c), lineID)
	if err != nil {
		err = fmt.Errorf("failed removing line with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return result, err
	}
	logger.Info().Msg("removed line")

	return result, nil
}
