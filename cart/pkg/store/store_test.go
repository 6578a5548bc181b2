package store

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/pkg/response"
	"github.com/Alturino/storefront/internal/api"
	"github.com/Alturino/storefront/internal/apitest"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/state"
	"github.com/Alturino/storefront/product/pkg/attribute"
)

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) Mutation(store, operation, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[store+" "+operation+" "+result]++
}

func (r *countingRecorder) get(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key]
}

func newStore(t *testing.T) (*Store, *apitest.Server, *countingRecorder) {
	t.Helper()
	server := apitest.NewServer(apitest.Shirt(), apitest.Mug(), apitest.SoldOut())
	t.Cleanup(server.Close)
	recorder := &countingRecorder{}
	client := api.New(server.URL, nil, api.WithHTTPClient(server.Client()))
	s := New(client, WithRecorder(recorder))
	require.NoError(t, s.Load(context.Background()))
	return s, server, recorder
}

func xl() attribute.Selection { return attribute.Selection{}.Set(1, attribute.ID(6)) }

func TestAddToCartPreflight(t *testing.T) {
	tests := []struct {
		name        string
		seed        int
		slug        string
		quantity    int
		selection   attribute.Selection
		expectedErr error
		expectedMsg string
	}{
		{
			name:        "given zero quantity should reject",
			slug:        "oxford-shirt",
			quantity:    0,
			selection:   xl(),
			expectedErr: commonErrors.ErrInvalidQuantity,
			expectedMsg: "Quantity must be at least 1.",
		},
		{
			name:        "given missing required attribute should reject",
			slug:        "oxford-shirt",
			quantity:    1,
			selection:   attribute.Selection{}.Set(2, attribute.ID(8)),
			expectedErr: commonErrors.ErrMissingAttribute,
			expectedMsg: "Please select Size.",
		},
		{
			name:        "given out of stock product should reject",
			slug:        "limited-print",
			quantity:    1,
			expectedErr: commonErrors.ErrOutOfStock,
			expectedMsg: "Limited Print is out of stock.",
		},
		{
			name:        "given quantity above stock should reject",
			slug:        "oxford-shirt",
			quantity:    6,
			selection:   xl(),
			expectedErr: commonErrors.ErrInsufficientStock,
			expectedMsg: "Only 5 of Oxford Shirt available.",
		},
		{
			name:        "given combined quantity above stock should reject",
			seed:        4,
			slug:        "oxford-shirt",
			quantity:    2,
			selection:   xl(),
			expectedErr: commonErrors.ErrInsufficientStock,
			expectedMsg: "Only 5 of Oxford Shirt available and 4 already in your cart.",
		},
	}

	products := map[string]func() response.CartLine{
		"oxford-shirt": func() response.CartLine {
			return response.CartLine{Product: apitest.Shirt(), Attributes: xl()}
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, server, recorder := newStore(t)
			c := context.Background()
			if test.seed > 0 {
				line := products[test.slug]()
				line.Quantity = test.seed
				server.SeedLine(line)
				require.NoError(t, s.Load(c))
			}
			product := apitest.Shirt()
			if test.slug == "limited-print" {
				product = apitest.SoldOut()
			}
			before := s.Lines()
			callsBefore := server.TotalCalls()

			result, err := s.AddToCart(c, product, test.quantity, test.selection)

			assert.ErrorIs(t, err, test.expectedErr)
			assert.False(t, result.Success)
			assert.Equal(t, test.expectedMsg, result.Message)
			assert.Equal(t, callsBefore, server.TotalCalls())
			assert.Equal(t, before, s.Lines())
			assert.Equal(t, 1, recorder.get("cart add rejected"))
		})
	}
}

func TestAddToCartMergesMatchingLine(t *testing.T) {
	s, server, _ := newStore(t)
	c := context.Background()
	shirt := apitest.Shirt()

	result, err := s.AddToCart(c, shirt, 1, attribute.Selection{}.Set(1, attribute.ID(6)).Set(2, attribute.ID(8)))
	require.NoError(t, err)
	assert.Equal(t, response.Result{Success: true, Message: "Added to cart."}, result)

	result, err = s.AddToCart(c, shirt, 2, attribute.Selection{}.Set(2, attribute.ID(8)).Set(1, attribute.ID(6)))
	require.NoError(t, err)
	assert.Equal(t, "Cart updated.", result.Message)
	assert.Equal(t, 1, server.Calls("POST /api/cart/items"))
	assert.Equal(t, 1, server.Calls("PUT /api/cart/items/{id}"))
	require.Len(t, s.Lines(), 1)
	assert.Equal(t, 3, s.QuantityInCart(shirt.ID, attribute.Selection{}.Set(1, attribute.ID(6)).Set(2, attribute.ID(8))))

	_, err = s.AddToCart(c, shirt, 1, attribute.Selection{}.Set(1, attribute.ID(5)))
	require.NoError(t, err)
	assert.Equal(t, 2, server.Calls("POST /api/cart/items"))
	assert.Len(t, s.Lines(), 2)
	assert.Equal(t, 4, s.Count())
}

func TestUpdateQuantityGuard(t *testing.T) {
	s, server, recorder := newStore(t)
	c := context.Background()
	_, err := s.AddToCart(c, apitest.Mug(), 2, nil)
	require.NoError(t, err)
	line := s.Lines()[0]
	before := s.Snapshot()
	callsBefore := server.TotalCalls()

	result, err := s.UpdateQuantity(c, line.ID, 0)

	assert.ErrorIs(t, err, commonErrors.ErrInvalidQuantity)
	assert.False(t, result.Success)
	assert.Equal(t, callsBefore, server.TotalCalls())
	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, 1, recorder.get("cart update rejected"))

	_, err = s.UpdateQuantity(c, 999, 1)
	assert.ErrorIs(t, err, commonErrors.ErrLineNotFound)

	_, err = s.UpdateQuantity(c, line.ID, 11)
	assert.ErrorIs(t, err, commonErrors.ErrInsufficientStock)
	assert.Equal(t, callsBefore, server.TotalCalls())

	result, err = s.UpdateQuantity(c, line.ID, 3)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "37.5", s.Total().String())
}

func TestAddThenRemoveRoundTrip(t *testing.T) {
	s, _, _ := newStore(t)
	c := context.Background()
	_, err := s.AddToCart(c, apitest.Mug(), 1, nil)
	require.NoError(t, err)
	_, err = s.AddToCart(c, apitest.Shirt(), 2, xl())
	require.NoError(t, err)

	line, ok := s.FindLine(apitest.Shirt().ID, xl())
	require.True(t, ok)
	totalBefore := s.Total()
	assert.Equal(t, "202.5", totalBefore.String())

	result, err := s.RemoveFromCart(c, line.ID)

	require.NoError(t, err)
	assert.True(t, result.Success)
	for _, l := range s.Lines() {
		assert.NotEqual(t, line.ID, l.ID)
	}
	assert.True(t, totalBefore.Sub(line.FinalPrice).Equal(s.Total()))
}

func TestFailureLeavesCacheUntouched(t *testing.T) {
	s, server, recorder := newStore(t)
	c := context.Background()
	_, err := s.AddToCart(c, apitest.Mug(), 1, nil)
	require.NoError(t, err)
	before := s.Lines()

	server.FailNext("POST /api/cart/items", apitest.Failure{
		StatusCode: http.StatusUnprocessableEntity,
		Message:    "The given data was invalid.",
		Fields:     map[string][]string{"quantity": {"Only 1 left in stock."}},
	})
	result, err := s.AddToCart(c, apitest.Shirt(), 1, xl())

	require.Error(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Only 1 left in stock.", result.Message)
	assert.Equal(t, before, s.Lines())
	assert.Equal(t, state.StatusError, s.Status())
	assert.Equal(t, 1, recorder.get("cart add failure"))

	_, err = s.AddToCart(c, apitest.Shirt(), 1, xl())
	require.NoError(t, err)
	assert.Equal(t, state.StatusSynced, s.Status())
}

func TestEmptyPayloadRefetches(t *testing.T) {
	s, server, _ := newStore(t)
	server.OmitData("POST /api/cart/items")

	result, err := s.AddToCart(context.Background(), apitest.Mug(), 1, nil)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, server.Calls("GET /api/cart"))
	assert.Len(t, s.Lines(), 1)
}

func TestNonCartPayloadRefetches(t *testing.T) {
	tests := []struct {
		name  string
		route string
		data  any
		run   func(s *Store) (response.Result, error)
	}{
		{
			name:  "given added line echoed should refetch cart",
			route: "POST /api/cart/items",
			data:  map[string]any{"id": 200, "product_id": 1, "quantity": 1},
			run: func(s *Store) (response.Result, error) {
				return s.AddToCart(context.Background(), apitest.Shirt(), 1, xl())
			},
		},
		{
			name:  "given updated line echoed should refetch cart",
			route: "PUT /api/cart/items/{id}",
			data:  map[string]any{"id": 101, "quantity": 2},
			run: func(s *Store) (response.Result, error) {
				return s.UpdateQuantity(context.Background(), s.Lines()[0].ID, 2)
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, server, _ := newStore(t)
			_, err := s.AddToCart(context.Background(), apitest.Mug(), 1, nil)
			require.NoError(t, err)
			server.ReplaceData(test.route, test.data)

			result, err := test.run(s)

			require.NoError(t, err)
			assert.True(t, result.Success)
			assert.NotEmpty(t, s.Lines())
			assert.Equal(t, 2, server.Calls("GET /api/cart"))
			assert.True(t, s.Total().IsPositive())
		})
	}
}

func TestSubscribersSeeEveryTransition(t *testing.T) {
	s, _, _ := newStore(t)
	statuses := []state.Status{}
	totals := []string{}
	unsubscribe := s.Subscribe(func(snapshot Snapshot) {
		statuses = append(statuses, snapshot.Status)
		totals = append(totals, snapshot.Total.String())
	})

	_, err := s.AddToCart(context.Background(), apitest.Mug(), 2, nil)
	require.NoError(t, err)
	unsubscribe()
	_, err = s.AddToCart(context.Background(), apitest.Mug(), 1, nil)
	require.NoError(t, err)

	assert.Equal(t, []state.Status{state.StatusMutating, state.StatusSynced}, statuses)
	assert.Equal(t, []string{"0", "25"}, totals)
}

func TestConcurrentMutationsPublishLatestSnapshot(t *testing.T) {
	s, _, _ := newStore(t)
	c := context.Background()
	_, err := s.AddToCart(c, apitest.Mug(), 1, nil)
	require.NoError(t, err)
	lineID := s.Lines()[0].ID

	var slow sync.Once
	s.Subscribe(func(snapshot Snapshot) {
		if snapshot.Status == state.StatusSynced {
			slow.Do(func() { time.Sleep(20 * time.Millisecond) })
		}
	})
	mu := sync.Mutex{}
	last := Snapshot{}
	s.Subscribe(func(snapshot Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		last = snapshot
	})

	wg := sync.WaitGroup{}
	for _, quantity := range []int{2, 3} {
		wg.Add(1)
		go func(quantity int) {
			defer wg.Done()
			_, err := s.UpdateQuantity(c, lineID, quantity)
			assert.NoError(t, err)
		}(quantity)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, s.Snapshot(), last)
	assert.Equal(t, state.StatusSynced, last.Status)
}

type cancellingClient struct {
	Client
	cancel context.CancelFunc
}

func (cl cancellingClient) AddCartItem(c context.Context, param request.AddCartItem) (*response.Cart, error) {
	cart, err := cl.Client.AddCartItem(context.WithoutCancel(c), param)
	cl.cancel()
	return cart, err
}

func TestCancelledMutationIsNotApplied(t *testing.T) {
	server := apitest.NewServer(apitest.Mug())
	t.Cleanup(server.Close)
	c, cancel := context.WithCancel(context.Background())
	defer cancel()
	recorder := &countingRecorder{}
	client := cancellingClient{Client: api.New(server.URL, nil, api.WithHTTPClient(server.Client())), cancel: cancel}
	s := New(client, WithRecorder(recorder))

	result, err := s.AddToCart(c, apitest.Mug(), 1, nil)

	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, result.Success)
	assert.Empty(t, s.Lines())
	assert.Equal(t, 1, server.Calls("POST /api/cart/items"))
	assert.Equal(t, state.StatusIdle, s.Status())
	assert.Equal(t, 1, recorder.get("cart add abandoned"))
}

func TestSnapshotView(t *testing.T) {
	s, _, _ := newStore(t)
	_, err := s.AddToCart(context.Background(), apitest.Shirt(), 2, xl())
	require.NoError(t, err)

	view := s.Snapshot().View()

	require.Len(t, view.Lines, 1)
	assert.Equal(t, "$190.00", view.Display)
	assert.Equal(t, "80", view.Lines[0].Breakdown.DiscountedUnitPrice.String())
	assert.Equal(t, "Size", view.Lines[0].Breakdown.Charges[0].AttributeName)
	assert.Equal(t, string(state.StatusSynced), view.Status)
}
