package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/Alturino/storefront/internal/api"
	"github.com/Alturino/storefront/internal/apitest"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/product/pkg/attribute"
	"github.com/Alturino/storefront/product/pkg/request"
)

func newService(t *testing.T, cache redis.Cmdable) (ProductService, *apitest.Server) {
	t.Helper()
	server := apitest.NewServer(apitest.Shirt(), apitest.Mug())
	t.Cleanup(server.Close)
	client := api.New(server.URL, nil, api.WithHTTPClient(server.Client()))
	return NewProductService(client, cache, time.Minute), server
}

func TestProductServiceGet(t *testing.T) {
	svc, server := newService(t, nil)
	c := context.Background()

	product, err := svc.Get(c, " oxford-shirt ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), product.ID)

	_, err = svc.Get(c, "")
	assert.ErrorIs(t, err, commonErrors.ErrEmptySlug)

	_, err = svc.Get(c, "missing")
	assert.ErrorIs(t, err, commonErrors.ErrNotFound)

	_, err = svc.Get(c, "oxford-shirt")
	require.NoError(t, err)
	assert.Equal(t, 3, server.Calls("GET /api/products/{slug}"))
}

func TestProductServiceQuote(t *testing.T) {
	tests := []struct {
		name              string
		selection         attribute.Selection
		quantity          int
		expectedTotal     string
		expectedSurcharge string
		expectedMissing   []string
	}{
		{
			name:              "given xl and gift wrap should add both surcharges after discount",
			selection:         attribute.Selection{}.Set(1, attribute.ID(6)).Set(2, attribute.ID(8)),
			quantity:          2,
			expectedTotal:     "195",
			expectedSurcharge: "17.5",
			expectedMissing:   []string{},
		},
		{
			name:              "given no size should report missing size",
			selection:         attribute.Selection{},
			quantity:          1,
			expectedTotal:     "80",
			expectedSurcharge: "0",
			expectedMissing:   []string{"Size"},
		},
		{
			name:              "given zero quantity should price one",
			selection:         attribute.Selection{}.Set(1, attribute.ID(5)),
			quantity:          0,
			expectedTotal:     "80",
			expectedSurcharge: "0",
			expectedMissing:   []string{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			svc, _ := newService(t, nil)

			quote, err := svc.Quote(context.Background(), "oxford-shirt", test.selection, test.quantity)

			require.NoError(t, err)
			assert.Equal(t, test.expectedTotal, quote.Breakdown.LineTotal.String())
			assert.Equal(t, test.expectedSurcharge, quote.Breakdown.AttributeSurcharge.String())
			assert.Equal(t, test.expectedMissing, quote.Missing)
		})
	}
}

func TestProductServiceListAndReviews(t *testing.T) {
	svc, _ := newService(t, nil)
	c := context.Background()

	page, err := svc.List(c, request.ListProducts{Search: "shirt"})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "oxford-shirt", page.Products[0].Slug)

	reviews, err := svc.Reviews(c, "oxford-shirt")
	require.NoError(t, err)
	assert.NotEmpty(t, reviews)

	filters, err := svc.Filters(c)
	require.NoError(t, err)
	assert.NotEmpty(t, filters)
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	apitest.SkipWithoutDocker(t)

	c := context.Background()
	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	connStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}
	opt, err := redis.ParseURL(connStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}
	client := redis.NewClient(opt)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestProductServiceCache(t *testing.T) {
	cache := setupRedis(t)
	svc, server := newService(t, cache)
	c := context.Background()

	first, err := svc.Get(c, "oxford-shirt")
	require.NoError(t, err)
	second, err := svc.Get(c, "oxford-shirt")
	require.NoError(t, err)

	assert.Equal(t, first.Attributes, second.Attributes)
	assert.Equal(t, 1, server.Calls("GET /api/products/{slug}"))
	exists, err := cache.Exists(c, fmt.Sprintf(KeyProduct, "oxford-shirt")).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	_, err = svc.Fresh(c, "oxford-shirt")
	require.NoError(t, err)
	assert.Equal(t, 2, server.Calls("GET /api/products/{slug}"))
}
