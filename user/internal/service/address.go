package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/shopper"
	inOtel "github.com/Alturino/storefront/user/internal/common/otel"
	"github.com/Alturino/storefront/user/pkg/request"
	"github.com/Alturino/storefront/user/pkg/response"
)

type AddressService struct{}

func NewAddressService() AddressService {
	return AddressService{}
}

func (a AddressService) List(c context.Context, s *shopper.Shopper) ([]response.ShippingAddress, error) {
	c, span := inOtel.Tracer.Start(c, "AddressService List")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AddressService List").
		Str(log.KeyProcess, "listing addresses").
		Logger()

	logger.Trace().Msg("listing addresses")
	addresses, err := s.Client.ListAddresses(c)
	if err != nil {
		err = fmt.Errorf("failed listing addresses with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Int("count", len(addresses)).Msg("listed addresses")

	return addresses, nil
}

func (a AddressService) Create(c context.Context, s *shopper.Shopper, param request.ShippingAddress) (response.ShippingAddress, error) {
	c, span := inOtel.Tracer.Start(c, "AddressService Create")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AddressService Create").
		Str(log.KeyProcess, "creating address").
		Logger()

	logger.Info().Msg("creating address")
	address, err := s.Client.CreateAddress(c, param)
	if err != nil {
		err = fmt.Errorf("failed creating address with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ShippingAddress{}, err
	}
	logger.Info().Int64(log.KeyAddressID, address.ID).Msg("created address")

	return address, nil
}

func (a AddressService) Update(c context.Context, s *shopper.Shopper, id int64, param request.ShippingAddress) (response.ShippingAddress, error) {
	c, span := inOtel.Tracer.Start(c, "AddressService Update")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AddressService Update").
		Str(log.KeyProcess, "updating address").
		Int64(log.KeyAddressID, id).
		Logger()

	logger.Info().Msg("updating address")
	address, err := s.Client.UpdateAddress(c, id, param)
	if err != nil {
		err = fmt.Errorf("failed updating addressId=%d with error=%w", id, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ShippingAddress{}, err
	}
	logger.Info().Msg("updated address")

	return address, nil
}

func (a AddressService) Delete(c context.Context, s *shopper.Shopper, id int64) error {
	c, span := inOtel.Tracer.Start(c, "AddressService Delete")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AddressService Delete").
		Str(log.KeyProcess, "deleting address").
		Int64(log.KeyAddressID, id).
		Logger()

	logger.Info().Msg("deleting address")
	if err := s.Client.DeleteAddress(c, id); err != nil {
		err = fmt.Errorf("failed deleting addressId=%d with error=%w", id, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted address")

	return nil
}
