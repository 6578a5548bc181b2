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
	inOtel "github.com/Alturino/storefront/user/internal/common/otel"
	"github.com/Alturino/storefront/user/internal/service"
	"github.com/Alturino/storefront/user/pkg/request"
)

type AddressController struct {
	service service.AddressService
}

func AttachAddressController(mux *mux.Router, svc service.AddressService) {
	router := mux.PathPrefix("/addresses").Subrouter()

	controller := AddressController{service: svc}
	router.HandleFunc("", controller.List).Methods(http.MethodGet)
	router.HandleFunc("", controller.Create).Methods(http.MethodPost)
	router.HandleFunc("/{addressId}", controller.Update).Methods(http.MethodPut)
	router.HandleFunc("/{addressId}", controller.Delete).Methods(http.MethodDelete)
}

func (a AddressController) List(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "AddressController List")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "AddressController List").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	addresses, err := a.service.List(logger.WithContext(c), s)
	if err != nil {
		err = fmt.Errorf("failed listing addresses with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}

	response.WriteSuccess(c, w, "addresses found", map[string]interface{}{"addresses": addresses})
}

func (a AddressController) Create(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "AddressController Create")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "AddressController Create").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	reqBody, err := decodeAddress(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}

	address, err := a.service.Create(logger.WithContext(c), s, reqBody)
	if err != nil {
		err = fmt.Errorf("failed creating address with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}

	response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "Address saved.",
		"data":       map[string]interface{}{"address": address},
	})
}

func (a AddressController) Update(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "AddressController Update")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "AddressController Update").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	id, err := addressIDFromPath(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}
	logger = logger.With().Int64(log.KeyAddressID, id).Logger()

	reqBody, err := decodeAddress(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}

	address, err := a.service.Update(logger.WithContext(c), s, id, reqBody)
	if err != nil {
		err = fmt.Errorf("failed updating address with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}

	response.WriteSuccess(c, w, "Address updated.", map[string]interface{}{"address": address})
}

func (a AddressController) Delete(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "AddressController Delete")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "AddressController Delete").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	id, err := addressIDFromPath(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.service.Delete(logger.WithContext(c), s, id); err != nil {
		err = fmt.Errorf("failed deleting address with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}

	response.WriteSuccess(c, w, "Address deleted.", map[string]interface{}{})
}

func decodeAddress(r *http.Request) (request.ShippingAddress, error) {
	reqBody := request.ShippingAddress{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		return reqBody, fmt.Errorf("failed decoding request body with error=%w", err)
	}
	if err := validate.New().StructCtx(r.Context(), reqBody); err != nil {
		return reqBody, fmt.Errorf("failed validating request body with error=%w", err)
	}
	return reqBody, nil
}

func addressIDFromPath(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["addressId"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("failed parsing addressId=%s with error=%w", raw, commonErrors.ErrNotFound)
	}
	return id, nil
}
