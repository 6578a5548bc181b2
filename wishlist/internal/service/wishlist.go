package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	cartResponse "github.com/Alturino/storefront/cart/pkg/response"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/shopper"
	"github.com/Alturino/storefront/wishlist/internal/common/otel"
	"github.com/Alturino/storefront/wishlist/pkg/response"
)

type WishlistService struct{}

func NewWishlistService() WishlistService {
	return WishlistService{}
}

func (svc WishlistService) View(c context.Context, s *shopper.Shopper) (response.View, error) {
	c, span := otel.Tracer.Start(c, "WishlistService View")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistService View").
		Str(log.KeyProcess, "loading wishlist").
		Logger()

	logger.Trace().Msg("loading wishlist")
	if err := s.Ready(logger.WithContext(c)); err != nil {
		err = fmt.Errorf("failed loading wishlist with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.View{}, err
	}
	view := s.Wishlist.Snapshot().View()
	logger.Trace().Int(log.KeyWishlist, view.Count).Msg("loaded wishlist")

	return view, nil
}

// Toggle adds the product when absent and removes it when present.
func (svc WishlistService) Toggle(
	c context.Context,
	s *shopper.Shopper,
	productID int64,
) (cartResponse.Result, response.View, error) {
	c, span := otel.Tracer.Start(c, "WishlistService Toggle")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistService Toggle").
		Int64(log.KeyProductID, productID).
		Logger()

	if err := s.Ready(logger.WithContext(c)); err != nil {
		err = fmt.Errorf("failed loading wishlist with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return cartResponse.Result{Success: false, Message: "Could not load your wishlist."}, response.View{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "toggling wishlist").Logger()
	logger.Debug().Msg("toggling wishlist")
	result, err := s.Wishlist.Toggle(logger.WithContext(c), productID)
	if err != nil {
		err = fmt.Errorf("failed toggling wishlist with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return result, s.Wishlist.Snapshot().View(), err
	}
	logger.Info().Bool("inWishlist", s.Wishlist.Has(productID)).Msg("toggled wishlist")

	return result, s.Wishlist.Snapshot().View(), nil
}
