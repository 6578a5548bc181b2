package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/storefront/cart/internal/common/otel"
	"github.com/Alturino/storefront/cart/internal/service"
	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/internal/api"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/response"
	"github.com/Alturino/storefront/internal/common/validate"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/shopper"
)

type CartController struct {
	service service.CartService
}

func AttachCartController(router *mux.Router, svc service.CartService) {
	controller := CartController{service: svc}

	cart := router.PathPrefix("/cart").Subrouter()
	cart.HandleFunc("", controller.GetCart).Methods(http.MethodGet)
	cart.HandleFunc("/reload", controller.ReloadCart).Methods(http.MethodPost)
	cart.HandleFunc("/items", controller.AddToCart).Methods(http.MethodPost)
	cart.HandleFunc("/items/{lineId}", controller.UpdateQuantity).Methods(http.MethodPut)
	cart.HandleFunc("/items/{lineId}", controller.RemoveFromCart).Methods(http.MethodDelete)
}

func (ctrl CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController GetCart")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController GetCart").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		writeMissingShopper(w, r)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "viewing cart").Logger()
	logger.Trace().Msg("viewing cart")
	view, err := ctrl.service.View(logger.WithContext(c), s)
	if err != nil {
		err = fmt.Errorf("failed viewing cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}
	logger.Info().Int(log.KeyCartLines, len(view.Lines)).Msg("viewed cart")

	response.WriteSuccess(c, w, "cart found", map[string]interface{}{"cart": view})
}

func (ctrl CartController) ReloadCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ReloadCart")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController ReloadCart").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		writeMissingShopper(w, r)
		return
	}

	view, err := ctrl.service.Reload(logger.WithContext(c), s)
	if err != nil {
		err = fmt.Errorf("failed reloading cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}

	response.WriteSuccess(c, w, "cart reloaded", map[string]interface{}{"cart": view})
}

func (ctrl CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddToCart")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController AddToCart").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		writeMissingShopper(w, r)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.AddToCart{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	if err := validate.New().StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}
	span.SetAttributes(
		attribute.String(log.KeyProductSlug, reqBody.ProductSlug),
		attribute.Int(log.KeyQuantity, reqBody.Quantity),
	)

	logger = logger.With().Str(log.KeyProcess, "adding to cart").Logger()
	logger.Trace().Msg("adding to cart")
	result, err := ctrl.service.Add(logger.WithContext(c), s, reqBody)
	if err != nil {
		err = fmt.Errorf("failed adding to cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, result.Message)
		return
	}
	logger.Info().Msg("added to cart")

	writeResult(w, r, s, result.Message)
}

func (ctrl CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController UpdateQuantity").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		writeMissingShopper(w, r)
		return
	}

	lineID, err := lineIDFromPath(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}
	logger = logger.With().Int64(log.KeyCartLineID, lineID).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.UpdateQuantity{}
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

	logger = logger.With().Str(log.KeyProcess, "updating quantity").Logger()
	logger.Trace().Msg("updating quantity")
	result, err := ctrl.service.Update(logger.WithContext(c), s, lineID, reqBody)
	if err != nil {
		err = fmt.Errorf("failed updating quantity with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, result.Message)
		return
	}
	logger.Info().Msg("updated quantity")

	writeResult(w, r, s, result.Message)
}

func (ctrl CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveFromCart")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController RemoveFromCart").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		writeMissingShopper(w, r)
		return
	}

	lineID, err := lineIDFromPath(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}
	span.AddEvent("removing line", trace.WithAttributes(attribute.Int64(log.KeyCartLineID, lineID)))

	logger = logger.With().
		Int64(log.KeyCartLineID, lineID).
		Str(log.KeyProcess, "removing line").
		Logger()
	result, err := ctrl.service.Remove(logger.WithContext(c), s, lineID)
	if err != nil {
		err = fmt.Errorf("failed removing line with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, result.Message)
		return
	}
	logger.Info().Msg("removed line")

	writeResult(w, r, s, result.Message)
}

func lineIDFromPath(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["lineId"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed parsing lineId=%s with error=%w", raw, err)
	}
	return id, nil
}

func writeResult(w http.ResponseWriter, r *http.Request, s *shopper.Shopper, message string) {
	response.WriteSuccess(r.Context(), w, message, map[string]interface{}{"cart": s.Cart.Snapshot().View()})
}

func writeMissingShopper(w http.ResponseWriter, r *http.Request) {
	response.WriteFailed(r.Context(), w, http.StatusInternalServerError, "missing session")
}
