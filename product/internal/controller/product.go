package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/api"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/response"
	"github.com/Alturino/storefront/internal/common/validate"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/shopper"
	"github.com/Alturino/storefront/product/internal/common/otel"
	"github.com/Alturino/storefront/product/internal/service"
	"github.com/Alturino/storefront/product/pkg/request"
)

type ProductController struct {
	service service.ProductService
}

func AttachProductController(router *mux.Router, svc service.ProductService) {
	controller := ProductController{service: svc}

	router.HandleFunc("/filters", controller.Filters).Methods(http.MethodGet)
	router.HandleFunc("/modules/{moduleId}/data", controller.ModuleData).Methods(http.MethodGet)

	products := router.PathPrefix("/products").Subrouter()
	products.HandleFunc("", controller.ListProducts).Methods(http.MethodGet)
	products.HandleFunc("/{slug}", controller.GetProduct).Methods(http.MethodGet)
	products.HandleFunc("/{slug}/quote", controller.Quote).Methods(http.MethodPost)
	products.HandleFunc("/{slug}/reviews", controller.ListReviews).Methods(http.MethodGet)
	products.HandleFunc("/{slug}/reviews", controller.CreateReview).Methods(http.MethodPost)
}

func (ctrl ProductController) ListProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController ListProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController ListProducts").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing query").Logger()
	logger.Trace().Msg("parsing query")
	param, err := request.ParseListProducts(r.URL.Query())
	if err != nil {
		err = fmt.Errorf("failed parsing query with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.New().StructCtx(c, param); err != nil {
		err = fmt.Errorf("failed validating query with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}
	logger = logger.With().Object("filters", param).Logger()
	logger.Trace().Msg("parsed query")

	logger = logger.With().Str(log.KeyProcess, "listing products").Logger()
	logger.Trace().Msg("listing products")
	page, err := ctrl.service.List(logger.WithContext(c), param)
	if err != nil {
		err = fmt.Errorf("failed listing products with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}
	logger.Info().Int(log.KeyProducts, len(page.Products)).Msg("listed products")

	response.WriteSuccess(c, w, "products found", map[string]interface{}{"products": page})
}

func (ctrl ProductController) GetProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController GetProduct")
	defer span.End()

	slug := mux.Vars(r)["slug"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController GetProduct").
		Str(log.KeyProductSlug, slug).
		Str(log.KeyProcess, "getting product").
		Logger()

	logger.Trace().Msg("getting product")
	product, err := ctrl.service.Get(logger.WithContext(c), slug)
	if err != nil {
		err = fmt.Errorf("failed getting product with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}
	logger.Info().Msg("got product")

	response.WriteSuccess(c, w, fmt.Sprintf("product slug=%s found", slug), map[string]interface{}{"product": product})
}

func (ctrl ProductController) Quote(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController Quote")
	defer span.End()

	slug := mux.Vars(r)["slug"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController Quote").
		Str(log.KeyProductSlug, slug).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.Quote{}
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
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "quoting product").Logger()
	logger.Trace().Msg("quoting product")
	quote, err := ctrl.service.Quote(logger.WithContext(c), slug, reqBody.Attributes, reqBody.Quantity)
	if err != nil {
		err = fmt.Errorf("failed quoting product with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}
	logger.Info().Str(log.KeyBreakdown, quote.Breakdown.LineTotal.String()).Msg("quoted product")

	response.WriteSuccess(c, w, "product quoted", map[string]interface{}{"quote": quote})
}

func (ctrl ProductController) ListReviews(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController ListReviews")
	defer span.End()

	slug := mux.Vars(r)["slug"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController ListReviews").
		Str(log.KeyProductSlug, slug).
		Logger()

	reviews, err := ctrl.service.Reviews(logger.WithContext(c), slug)
	if err != nil {
		err = fmt.Errorf("failed listing reviews with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}

	response.WriteSuccess(c, w, "reviews found", map[string]interface{}{"reviews": reviews})
}

func (ctrl ProductController) CreateReview(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController CreateReview")
	defer span.End()

	slug := mux.Vars(r)["slug"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController CreateReview").
		Str(log.KeyProductSlug, slug).
		Logger()

	s, ok := shopper.FromContext(c)
	if !ok || !s.Session.State().Authenticated() {
		err := fmt.Errorf("failed creating review with error=%w", commonErrors.ErrEmptyAuth)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusUnauthorized, "Please log in to write a review.")
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.CreateReview{}
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

	logger = logger.With().Str(log.KeyProcess, "creating review").Logger()
	logger.Trace().Msg("creating review")
	review, err := ctrl.service.WithClient(s.Client).CreateReview(logger.WithContext(c), slug, reqBody)
	if err != nil {
		err = fmt.Errorf("failed creating review with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}
	logger.Info().Msg("created review")

	response.WriteSuccess(c, w, "review submitted", map[string]interface{}{"review": review})
}

func (ctrl ProductController) Filters(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController Filters")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductController Filters").Logger()

	filters, err := ctrl.service.Filters(logger.WithContext(c))
	if err != nil {
		err = fmt.Errorf("failed getting filters with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}

	response.WriteSuccess(c, w, "filters found", map[string]interface{}{"filters": filters})
}

func (ctrl ProductController) ModuleData(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController ModuleData")
	defer span.End()

	moduleID := mux.Vars(r)["moduleId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController ModuleData").
		Str("moduleId", moduleID).
		Logger()

	data, err := ctrl.service.ModuleData(logger.WithContext(c), moduleID)
	if err != nil {
		err = fmt.Errorf("failed getting module data with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}

	response.WriteSuccess(c, w, "module data found", map[string]interface{}{"module": data})
}
