package controller

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/api"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/response"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/shopper"
	"github.com/Alturino/storefront/wishlist/internal/common/otel"
	"github.com/Alturino/storefront/wishlist/internal/service"
)

type WishlistController struct {
	service service.WishlistService
}

func AttachWishlistController(router *mux.Router, svc service.WishlistService) {
	controller := WishlistController{service: svc}

	wishlist := router.PathPrefix("/wishlist").Subrouter()
	wishlist.HandleFunc("", controller.GetWishlist).Methods(http.MethodGet)
	wishlist.HandleFunc("/{productId}/toggle", controller.Toggle).Methods(http.MethodPost)
}

func (ctrl WishlistController) GetWishlist(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "WishlistController GetWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "WishlistController GetWishlist").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	view, err := ctrl.service.View(logger.WithContext(c), s)
	if err != nil {
		err = fmt.Errorf("failed viewing wishlist with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}

	response.WriteSuccess(c, w, "wishlist found", map[string]interface{}{"wishlist": view})
}

func (ctrl WishlistController) Toggle(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "WishlistController Toggle")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "WishlistController Toggle").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	logger = logger.With().Str(log.KeyProcess, "getting productId").Logger()
	raw := mux.Vars(r)["productId"]
	productID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		err = fmt.Errorf("failed parsing productId=%s with error=%w", raw, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}
	logger = logger.With().Int64(log.KeyProductID, productID).Logger()

	logger = logger.With().Str(log.KeyProcess, "toggling wishlist").Logger()
	logger.Trace().Msg("toggling wishlist")
	result, view, err := ctrl.service.Toggle(logger.WithContext(c), s, productID)
	if err != nil {
		err = fmt.Errorf("failed toggling wishlist with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, result.Message)
		return
	}
	logger.Info().Msg("toggled wishlist")

	response.WriteSuccess(c, w, result.Message, map[string]interface{}{"wishlist": view})
}
