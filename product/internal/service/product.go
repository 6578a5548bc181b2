package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/product/internal/common/otel"
	"github.com/Alturino/storefront/product/pkg/attribute"
	"github.com/Alturino/storefront/product/pkg/pricing"
	"github.com/Alturino/storefront/product/pkg/request"
	"github.com/Alturino/storefront/product/pkg/response"
)

const (
	KeyProduct  = "storefront:product:%s"
	KeyProducts = "storefront:products:%s"
	KeyFilters  = "storefront:filters"
)

type ProductClient interface {
	ListProducts(c context.Context, param request.ListProducts) (response.ProductPage, error)
	GetProduct(c context.Context, slug string) (response.Product, error)
	ListReviews(c context.Context, slug string) ([]response.Review, error)
	CreateReview(c context.Context, slug string, param request.CreateReview) (response.Review, error)
	Filters(c context.Context) ([]response.Filter, error)
	ModuleData(c context.Context, moduleID string) (json.RawMessage, error)
}

// Quote is the price of one configured product before it is added to a cart.
type Quote struct {
	Product   response.Product    `json:"product"`
	Selection attribute.Selection `json:"attributes"`
	Breakdown pricing.Breakdown   `json:"breakdown"`
	Missing   []string            `json:"missing_attributes"`
}

// ProductService reads the catalogue through a read-through cache. A nil
// cache disables caching.
type ProductService struct {
	client ProductClient
	cache  redis.Cmdable
	ttl    time.Duration
}

func NewProductService(client ProductClient, cache redis.Cmdable, ttl time.Duration) ProductService {
	return ProductService{client: client, cache: cache, ttl: ttl}
}

// WithClient returns a copy that calls the API as another session. The cache
// is shared.
func (svc ProductService) WithClient(client ProductClient) ProductService {
	svc.client = client
	return svc
}

func (svc ProductService) List(c context.Context, param request.ListProducts) (response.ProductPage, error) {
	c, span := otel.Tracer.Start(c, "ProductService List")
	defer span.End()

	cacheKey := fmt.Sprintf(KeyProducts, param.Query().Encode())
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService List").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	page := response.ProductPage{}
	if svc.fromCache(logger.WithContext(c), cacheKey, &page) {
		logger.Debug().Msg("found products in cache")
		return page, nil
	}

	logger = logger.With().Str(log.KeyProcess, "listing products").Logger()
	logger.Debug().Msg("listing products")
	page, err := svc.client.ListProducts(c, param)
	if err != nil {
		err = fmt.Errorf("failed listing products with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ProductPage{}, err
	}
	logger.Debug().Int(log.KeyProducts, len(page.Products)).Msg("listed products")

	svc.toCache(logger.WithContext(c), cacheKey, page)
	return page, nil
}

func (svc ProductService) Get(c context.Context, slug string) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService Get")
	defer span.End()

	slug = strings.TrimSpace(slug)
	cacheKey := fmt.Sprintf(KeyProduct, slug)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService Get").
		Str(log.KeyProductSlug, slug).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	if slug == "" {
		err := fmt.Errorf("failed getting product with error=%w", commonErrors.ErrEmptySlug)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}

	product := response.Product{}
	if svc.fromCache(logger.WithContext(c), cacheKey, &product) {
		logger.Debug().Msg("found product in cache")
		return product, nil
	}

	logger = logger.With().Str(log.KeyProcess, "getting product").Logger()
	logger.Debug().Msg("getting product")
	product, err := svc.client.GetProduct(c, slug)
	if err != nil {
		err = fmt.Errorf("failed getting product slug=%s with error=%w", slug, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Debug().Int64(log.KeyProductID, product.ID).Msg("got product")

	svc.toCache(logger.WithContext(c), cacheKey, product)
	return product, nil
}

// Fresh bypasses the cache and refreshes it; stock checks use it.
func (svc ProductService) Fresh(c context.Context, slug string) (response.Product, error) {
	svc.Invalidate(c, slug)
	return svc.Get(c, slug)
}

func (svc ProductService) Invalidate(c context.Context, slug string) {
	if svc.cache == nil {
		return
	}
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductService Invalidate").Logger()
	if err := svc.cache.Del(c, fmt.Sprintf(KeyProduct, slug)).Err(); err != nil {
		logger.Warn().Err(err).Msg("failed invalidating product cache")
	}
}

func (svc ProductService) Reviews(c context.Context, slug string) ([]response.Review, error) {
	c, span := otel.Tracer.Start(c, "ProductService Reviews")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService Reviews").
		Str(log.KeyProductSlug, slug).
		Logger()

	reviews, err := svc.client.ListReviews(c, slug)
	if err != nil {
		err = fmt.Errorf("failed listing reviews with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	return reviews, nil
}

func (svc ProductService) CreateReview(c context.Context, slug string, param request.CreateReview) (response.Review, error) {
	c, span := otel.Tracer.Start(c, "ProductService CreateReview")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService CreateReview").
		Str(log.KeyProductSlug, slug).
		Logger()

	review, err := svc.client.CreateReview(c, slug, param)
	if err != nil {
		err = fmt.Errorf("failed creating review with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Review{}, err
	}
	logger.Info().Int64("reviewId", review.ID).Msg("created review")
	return review, nil
}

func (svc ProductService) Filters(c context.Context) ([]response.Filter, error) {
	c, span := otel.Tracer.Start(c, "ProductService Filters")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService Filters").
		Str(log.KeyCacheKey, KeyFilters).
		Logger()

	filters := []response.Filter{}
	if svc.fromCache(logger.WithContext(c), KeyFilters, &filters) {
		return filters, nil
	}
	filters, err := svc.client.Filters(c)
	if err != nil {
		err = fmt.Errorf("failed getting filters with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	svc.toCache(logger.WithContext(c), KeyFilters, filters)
	return filters, nil
}

func (svc ProductService) ModuleData(c context.Context, moduleID string) (json.RawMessage, error) {
	c, span := otel.Tracer.Start(c, "ProductService ModuleData")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService ModuleData").
		Str("moduleId", moduleID).
		Logger()

	data, err := svc.client.ModuleData(c, moduleID)
	if err != nil {
		err = fmt.Errorf("failed getting module data with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	return data, nil
}

// Quote prices a configuration of the product for display. Required
// attributes that are not selected are reported, not rejected.
func (svc ProductService) Quote(
	c context.Context,
	slug string,
	selection attribute.Selection,
	quantity int,
) (Quote, error) {
	c, span := otel.Tracer.Start(c, "ProductService Quote")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService Quote").
		Str(log.KeyProductSlug, slug).
		Str(log.KeyAttributes, attribute.Key(selection)).
		Int(log.KeyQuantity, quantity).
		Logger()

	product, err := svc.Get(logger.WithContext(c), slug)
	if err != nil {
		err = fmt.Errorf("failed quoting product with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Quote{}, err
	}

	missing := []string{}
	for _, a := range attribute.Missing(product.Attributes, selection) {
		missing = append(missing, a.Name)
	}
	breakdown := pricing.ForProduct(product, selection, quantity)
	logger.Debug().Str(log.KeyBreakdown, breakdown.LineTotal.String()).Msg("quoted product")

	return Quote{Product: product, Selection: selection.Clone(), Breakdown: breakdown, Missing: missing}, nil
}

func (svc ProductService) fromCache(c context.Context, key string, out any) bool {
	if svc.cache == nil {
		return false
	}
	logger := zerolog.Ctx(c).With().Str(log.KeyProcess, "reading cache").Logger()

	logger.Trace().Msg("reading cache")
	cached, err := svc.cache.Get(c, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn().Err(err).Msg("failed reading cache")
		}
		return false
	}
	if err := json.Unmarshal([]byte(cached), out); err != nil {
		logger.Warn().Err(err).Msg("failed unmarshaling cache")
		return false
	}
	return true
}

func (svc ProductService) toCache(c context.Context, key string, value any) {
	if svc.cache == nil {
		return
	}
	logger := zerolog.Ctx(c).With().Str(log.KeyProcess, "writing cache").Logger()

	b, err := json.Marshal(value)
	if err != nil {
		logger.Warn().Err(err).Msg("failed marshaling cache")
		return
	}
	if err := svc.cache.Set(c, key, b, svc.ttl).Err(); err != nil {
		logger.Warn().Err(err).Msg("failed writing cache")
		return
	}
	logger.Trace().Msg("wrote cache")
}
