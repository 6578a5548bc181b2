package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/shopper"
	"github.com/Alturino/storefront/notification/internal/common/otel"
	"github.com/Alturino/storefront/notification/pkg/request"
	"github.com/Alturino/storefront/notification/pkg/response"
)

type NotificationService struct{}

func NewNotificationService() NotificationService {
	return NotificationService{}
}

func (n NotificationService) Devices(c context.Context, s *shopper.Shopper) ([]response.Device, error) {
	c, span := otel.Tracer.Start(c, "NotificationService Devices")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "NotificationService Devices").
		Str(log.KeyProcess, "listing devices").
		Logger()

	logger.Trace().Msg("listing devices")
	devices, err := s.Client.ListDevices(c)
	if err != nil {
		err = fmt.Errorf("failed listing devices with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Int("count", len(devices)).Msg("listed devices")

	return devices, nil
}

// RegisterDevice registers the device and hands its token to the push
// endpoint as well.
func (n NotificationService) RegisterDevice(c context.Context, s *shopper.Shopper, param request.RegisterDevice) (response.Device, error) {
	c, span := otel.Tracer.Start(c, "NotificationService RegisterDevice")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "NotificationService RegisterDevice").
		Str("platform", param.Platform).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "registering device").Logger()
	logger.Info().Msg("registering device")
	device, err := s.Client.RegisterDevice(c, param)
	if err != nil {
		err = fmt.Errorf("failed registering device with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Device{}, err
	}
	logger = logger.With().Int64(log.KeyDeviceID, device.ID).Logger()
	logger.Info().Msg("registered device")

	logger = logger.With().Str(log.KeyProcess, "saving fcm token").Logger()
	if err := s.Client.SaveFcmToken(c, request.FcmToken{Token: param.DeviceToken}); err != nil {
		err = fmt.Errorf("failed saving fcm token with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return device, err
	}
	logger.Debug().Msg("saved fcm token")

	return device, nil
}

func (n NotificationService) DeleteDevice(c context.Context, s *shopper.Shopper, id int64) error {
	c, span := otel.Tracer.Start(c, "NotificationService DeleteDevice")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "NotificationService DeleteDevice").
		Str(log.KeyProcess, "deleting device").
		Int64(log.KeyDeviceID, id).
		Logger()

	logger.Info().Msg("deleting device")
	if err := s.Client.DeleteDevice(c, id); err != nil {
		err = fmt.Errorf("failed deleting deviceId=%d with error=%w", id, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted device")

	return nil
}

// Settings returns the push settings. A fetch that ran past its deadline
// degrades to disabled notifications instead of failing the caller.
func (n NotificationService) Settings(c context.Context, s *shopper.Shopper) (response.NotificationSettings, error) {
	c, span := otel.Tracer.Start(c, "NotificationService Settings")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "NotificationService Settings").
		Str(log.KeyProcess, "getting notification settings").
		Logger()

	logger.Trace().Msg("getting notification settings")
	settings, err := s.Client.NotificationSettings(c)
	if errors.Is(err, context.DeadlineExceeded) && c.Err() == nil {
		logger.Warn().Err(err).Msg("notification settings timed out, disabling notifications")
		return response.NotificationSettings{Enabled: false}, nil
	}
	if err != nil {
		err = fmt.Errorf("failed getting notification settings with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.NotificationSettings{}, err
	}
	logger.Trace().Bool("enabled", settings.Enabled).Msg("got notification settings")

	return settings, nil
}
