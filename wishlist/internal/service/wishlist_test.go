package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/api"
	"github.com/Alturino/storefront/internal/apitest"
	"github.com/Alturino/storefront/internal/shopper"
)

func TestWishlistServiceToggle(t *testing.T) {
	server := apitest.NewServer(apitest.Shirt(), apitest.Mug())
	t.Cleanup(server.Close)
	registry := shopper.NewRegistry(api.New(server.URL, nil, api.WithHTTPClient(server.Client())), nil, nil)
	c := context.Background()
	s, err := registry.Resolve(c, "", "")
	require.NoError(t, err)
	svc := NewWishlistService()

	view, err := svc.View(c, s)
	require.NoError(t, err)
	assert.Zero(t, view.Count)

	result, view, err := svc.Toggle(c, s, 2)
	require.NoError(t, err)
	assert.Equal(t, "Added to wishlist.", result.Message)
	assert.Equal(t, []int64{2}, view.ProductIDs)

	result, view, err = svc.Toggle(c, s, 2)
	require.NoError(t, err)
	assert.Equal(t, "Removed from wishlist.", result.Message)
	assert.Empty(t, view.ProductIDs)
	assert.Equal(t, 2, server.Calls("POST /api/wishlist/toggle"))

	result, _, err = svc.Toggle(c, s, 0)
	assert.Error(t, err)
	assert.False(t, result.Success)
}
