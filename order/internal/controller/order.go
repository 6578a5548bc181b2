package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Alturino/storefront/internal/api"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/response"
	"github.com/Alturino/storefront/internal/common/validate"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/shopper"
	"github.com/Alturino/storefront/order/internal/common/otel"
	"github.com/Alturino/storefront/order/internal/service"
	"github.com/Alturino/storefront/order/pkg/request"
)

type OrderController struct {
	service service.OrderService
}

func AttachOrderController(router *mux.Router, svc service.OrderService) {
	controller := OrderController{service: svc}

	router.HandleFunc("/checkout", controller.Summary).Methods(http.MethodGet)
	router.HandleFunc("/checkout", controller.Checkout).Methods(http.MethodPost)
	router.HandleFunc("/payment-methods", controller.PaymentMethods).Methods(http.MethodGet)
	router.HandleFunc("/orders/{orderId}", controller.FindOrderById).Methods(http.MethodGet)
}

func (ctrl OrderController) Summary(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController Summary")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController Summary").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	param := request.Checkout{CouponCode: r.URL.Query().Get("coupon_code")}
	if err := validate.New().StructCtx(c, param); err != nil {
		err = fmt.Errorf("failed validating query with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}

	logger = logger.With().Str(log.KeyProcess, "summarizing checkout").Logger()
	logger.Trace().Msg("summarizing checkout")
	checkout, _, err := ctrl.service.Summary(logger.WithContext(c), s, param)
	if err != nil {
		err = fmt.Errorf("failed summarizing checkout with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}
	logger.Info().Str(log.KeyCartTotal, checkout.Total.String()).Msg("summarized checkout")

	response.WriteSuccess(c, w, "checkout summarized", map[string]interface{}{"checkout": checkout})
}

func (ctrl OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController Checkout").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.CreateOrder{}
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
	span.SetAttributes(attribute.Int64(log.KeyAddressID, reqBody.ShippingAddressID))

	logger = logger.With().Str(log.KeyProcess, "placing order").Logger()
	logger.Info().Msg("placing order")
	checkout, err := ctrl.service.Place(logger.WithContext(c), s, reqBody)
	if err != nil {
		err = fmt.Errorf("failed placing order with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, placeMessage(err))
		return
	}
	logger.Info().Int64(log.KeyOrderID, checkout.Order.ID).Msg("placed order")

	response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    fmt.Sprintf("order %s placed", checkout.Order.OrderNumber),
		"data":       map[string]interface{}{"checkout": checkout},
	})
}

func (ctrl OrderController) FindOrderById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController FindOrderById").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	logger = logger.With().Str(log.KeyProcess, "getting orderId").Logger()
	pathValues := mux.Vars(r)
	orderID, err := strconv.ParseInt(pathValues["orderId"], 10, 64)
	if err != nil {
		err = fmt.Errorf("failed parsing orderId=%s with error=%w", pathValues["orderId"], err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}
	param := request.FindOrderById{OrderId: orderID}
	if err := validate.New().StructCtx(c, param); err != nil {
		err = fmt.Errorf("failed validating orderId with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}
	logger = logger.With().Int64(log.KeyOrderID, orderID).Logger()

	logger = logger.With().Str(log.KeyProcess, "finding order").Logger()
	order, err := ctrl.service.FindOrder(logger.WithContext(c), s, param)
	if err != nil {
		err = fmt.Errorf("failed finding order with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}
	logger.Info().Msg("found order")

	response.WriteSuccess(c, w, fmt.Sprintf("order id=%d found", orderID), map[string]interface{}{"order": order})
}

func (ctrl OrderController) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController PaymentMethods")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController PaymentMethods").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	methods, err := ctrl.service.PaymentMethods(logger.WithContext(c), s)
	if err != nil {
		err = fmt.Errorf("failed getting payment methods with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}

	response.WriteSuccess(c, w, "payment methods found", map[string]interface{}{"methods": methods})
}

func placeMessage(err error) string {
	switch {
	case errors.Is(err, commonErrors.ErrEmptyCart):
		return "Your cart is empty."
	case errors.Is(err, commonErrors.ErrGuestCheckout):
		return "Please log in to place your order."
	}
	return api.UserMessage(err)
}
