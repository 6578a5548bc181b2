package shopper

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartResponse "github.com/Alturino/storefront/cart/pkg/response"
	"github.com/Alturino/storefront/internal/api"
	"github.com/Alturino/storefront/internal/apitest"
	commonHttp "github.com/Alturino/storefront/internal/common/http"
	"github.com/Alturino/storefront/internal/state"
)

func TestRegistryResolve(t *testing.T) {
	server := apitest.NewServer(apitest.Mug())
	t.Cleanup(server.Close)
	registry := NewRegistry(api.New(server.URL, nil, api.WithHTTPClient(server.Client())), nil, nil)
	c := context.Background()

	first, err := registry.Resolve(c, "", "")
	require.NoError(t, err)
	sessionID := first.Session.SessionID()
	assert.NotEmpty(t, sessionID)

	again, err := registry.Resolve(c, sessionID, "")
	require.NoError(t, err)
	assert.Same(t, first, again)

	other, err := registry.Resolve(c, "not-a-uuid", "")
	require.NoError(t, err)
	assert.NotEqual(t, sessionID, other.Session.SessionID())
	assert.Equal(t, 2, registry.Len())

	authed, err := registry.Resolve(c, sessionID, apitest.Token)
	require.NoError(t, err)
	assert.True(t, authed.Session.State().Authenticated())
}

func TestShopperReady(t *testing.T) {
	server := apitest.NewServer(apitest.Mug())
	t.Cleanup(server.Close)
	registry := NewRegistry(api.New(server.URL, nil, api.WithHTTPClient(server.Client())), nil, nil)
	c := context.Background()
	s, err := registry.Resolve(c, "", "")
	require.NoError(t, err)

	require.NoError(t, s.Ready(c))
	require.NoError(t, s.Ready(c))

	assert.Equal(t, state.StatusSynced, s.Cart.Status())
	assert.Equal(t, state.StatusSynced, s.Wishlist.Status())
	assert.Equal(t, 1, server.Calls("GET /api/cart"))
	assert.Equal(t, 1, server.Calls("GET /api/wishlist"))
	assert.Equal(t, s.Session.SessionID(), server.LastHeader("GET /api/cart").Get(commonHttp.HeaderSessionID))
}

func TestShopperReadyRetriesFailedLoad(t *testing.T) {
	server := apitest.NewServer(apitest.Mug())
	t.Cleanup(server.Close)
	server.SeedLine(cartResponse.CartLine{Product: apitest.Mug(), Quantity: 2})
	registry := NewRegistry(api.New(server.URL, nil, api.WithHTTPClient(server.Client())), nil, nil)
	c := context.Background()
	s, err := registry.Resolve(c, "", "")
	require.NoError(t, err)

	server.FailNext("GET /api/cart", apitest.Failure{StatusCode: http.StatusBadGateway, Message: "Bad Gateway"})
	require.Error(t, s.Ready(c))
	assert.Equal(t, state.StatusError, s.Cart.Status())

	require.NoError(t, s.Ready(c))
	assert.Equal(t, state.StatusSynced, s.Cart.Status())
	assert.Len(t, s.Cart.Lines(), 1)
	assert.Equal(t, 2, server.Calls("GET /api/cart"))

	result, err := s.Cart.AddToCart(c, apitest.Mug(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "Cart updated.", result.Message)
	assert.Zero(t, server.Calls("POST /api/cart/items"))
	assert.Equal(t, 3, s.Cart.Count())
}

func TestRegistryEviction(t *testing.T) {
	tests := []struct {
		name        string
		opts        []RegistryOption
		resolves    int
		wait        time.Duration
		expectedLen int
	}{
		{name: "given more sessions than capacity should keep capacity", opts: []RegistryOption{WithCapacity(100)}, resolves: 500, expectedLen: 100},
		{name: "given idle sessions past ttl should drop them", opts: []RegistryOption{WithIdleTTL(50 * time.Millisecond)}, resolves: 10, wait: 200 * time.Millisecond, expectedLen: 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := apitest.NewServer(apitest.Mug())
			t.Cleanup(server.Close)
			registry := NewRegistry(api.New(server.URL, nil, api.WithHTTPClient(server.Client())), nil, nil, test.opts...)
			c := context.Background()

			for i := 0; i < test.resolves; i++ {
				_, err := registry.Resolve(c, "", "")
				require.NoError(t, err)
			}
			time.Sleep(test.wait)

			assert.Equal(t, test.expectedLen, registry.Len())
		})
	}
}

func TestRegistryRebuildsEvictedSession(t *testing.T) {
	server := apitest.NewServer(apitest.Mug())
	t.Cleanup(server.Close)
	registry := NewRegistry(api.New(server.URL, nil, api.WithHTTPClient(server.Client())), nil, nil, WithCapacity(1))
	c := context.Background()

	first, err := registry.Resolve(c, "", "")
	require.NoError(t, err)
	sessionID := first.Session.SessionID()
	_, err = registry.Resolve(c, "", "")
	require.NoError(t, err)

	again, err := registry.Resolve(c, sessionID, "")
	require.NoError(t, err)
	assert.NotSame(t, first, again)
	assert.Equal(t, sessionID, again.Session.SessionID())
	assert.Equal(t, 1, registry.Len())
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := &Shopper{}
	actual, ok := FromContext(AttachToContext(context.Background(), s))
	assert.True(t, ok)
	assert.Same(t, s, actual)
}
