package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/api"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/response"
	"github.com/Alturino/storefront/internal/common/validate"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/shopper"
	"github.com/Alturino/storefront/notification/internal/common/otel"
	"github.com/Alturino/storefront/notification/internal/service"
	"github.com/Alturino/storefront/notification/pkg/request"
)

type NotificationController struct {
	service service.NotificationService
}

func AttachNotificationController(router *mux.Router, svc service.NotificationService) {
	controller := NotificationController{service: svc}

	router.HandleFunc("/devices", controller.Devices).Methods(http.MethodGet)
	router.HandleFunc("/devices", controller.RegisterDevice).Methods(http.MethodPost)
	router.HandleFunc("/devices/{deviceId}", controller.DeleteDevice).Methods(http.MethodDelete)
	router.HandleFunc("/notification-settings", controller.Settings).Methods(http.MethodGet)
}

func (ctrl NotificationController) Devices(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "NotificationController Devices")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "NotificationController Devices").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	devices, err := ctrl.service.Devices(logger.WithContext(c), s)
	if err != nil {
		err = fmt.Errorf("failed listing devices with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}

	response.WriteSuccess(c, w, "devices found", map[string]interface{}{"devices": devices})
}

func (ctrl NotificationController) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "NotificationController RegisterDevice")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "NotificationController RegisterDevice").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.RegisterDevice{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.New().StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}

	device, err := ctrl.service.RegisterDevice(logger.WithContext(c), s, reqBody)
	if err != nil {
		err = fmt.Errorf("failed registering device with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}

	response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "Device registered.",
		"data":       map[string]interface{}{"device": device},
	})
}

func (ctrl NotificationController) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "NotificationController DeleteDevice")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "NotificationController DeleteDevice").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	raw := mux.Vars(r)["deviceId"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		err = fmt.Errorf("failed parsing deviceId=%s with error=%w", raw, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}

	if err := ctrl.service.DeleteDevice(logger.WithContext(c), s, id); err != nil {
		err = fmt.Errorf("failed deleting device with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}

	response.WriteSuccess(c, w, "Device removed.", map[string]interface{}{})
}

func (ctrl NotificationController) Settings(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "NotificationController Settings")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "NotificationController Settings").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	settings, err := ctrl.service.Settings(logger.WithContext(c), s)
	if err != nil {
		err = fmt.Errorf("failed getting notification settings with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}

	response.WriteSuccess(c, w, "notification settings found", map[string]interface{}{"settings": settings})
}
