package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartRequest "github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/internal/apitest"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	commonHttp "github.com/Alturino/storefront/internal/common/http"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/session"
	orderRequest "github.com/Alturino/storefront/order/pkg/request"
	"github.com/Alturino/storefront/product/pkg/attribute"
	productRequest "github.com/Alturino/storefront/product/pkg/request"
	userRequest "github.com/Alturino/storefront/user/pkg/request"
)

func newClient(t *testing.T) (*Client, *apitest.Server, *session.Manager) {
	t.Helper()
	server := apitest.NewServer(apitest.Shirt(), apitest.Mug())
	t.Cleanup(server.Close)

	manager, err := session.NewManager(context.Background(), session.NewMemoryStorage())
	require.NoError(t, err)

	return New(server.URL, manager, WithHTTPClient(server.Client())), server, manager
}

func TestClientHeaders(t *testing.T) {
	client, server, manager := newClient(t)
	c := log.AttachRequestIDToContext(context.Background(), "req-1")

	_, err := client.GetCart(c)
	require.NoError(t, err)
	header := server.LastHeader("GET /api/cart")
	assert.Equal(t, manager.SessionID(), header.Get(commonHttp.HeaderSessionID))
	assert.Equal(t, "req-1", header.Get(commonHttp.HeaderRequestID))
	assert.Empty(t, header.Get(commonHttp.HeaderAuthorization))

	require.NoError(t, manager.SignIn(c, apitest.Token, &session.Identity{ID: 1}))
	_, err = client.Me(c)
	require.NoError(t, err)
	header = server.LastHeader("GET /api/auth/me")
	assert.Equal(t, "Bearer "+apitest.Token, header.Get(commonHttp.HeaderAuthorization))
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name            string
		failure         apitest.Failure
		expectedMessage string
		expectedIs      error
	}{
		{
			name:            "given field errors should surface first field message",
			failure:         apitest.Failure{StatusCode: http.StatusUnprocessableEntity, Message: "The given data was invalid.", Fields: map[string][]string{"quantity": {"Only 2 left."}, "attributes": {"Pick a size."}}},
			expectedMessage: "Pick a size.",
		},
		{
			name:            "given only message should surface message",
			failure:         apitest.Failure{StatusCode: http.StatusBadRequest, Message: "Cart is locked."},
			expectedMessage: "Cart is locked.",
		},
		{
			name:            "given not found should unwrap to not found",
			failure:         apitest.Failure{StatusCode: http.StatusNotFound},
			expectedMessage: "Not Found",
			expectedIs:      commonErrors.ErrNotFound,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client, server, _ := newClient(t)
			server.FailNext("GET /api/cart", test.failure)

			_, err := client.GetCart(context.Background())

			require.Error(t, err)
			apiErr := &Error{}
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, test.failure.StatusCode, apiErr.StatusCode)
			assert.Equal(t, test.expectedMessage, UserMessage(err))
			if test.expectedIs != nil {
				assert.ErrorIs(t, err, test.expectedIs)
			}
		})
	}
}

func TestClientUnauthorizedExpiresSession(t *testing.T) {
	client, _, manager := newClient(t)
	c := context.Background()
	require.NoError(t, manager.SignIn(c, "stale-token", &session.Identity{ID: 1}))
	sessionID := manager.SessionID()

	events := []session.Event{}
	manager.Subscribe(func(change session.Change) { events = append(events, change.Event) })

	_, err := client.Me(c)

	assert.ErrorIs(t, err, commonErrors.ErrUnauthorized)
	assert.False(t, manager.State().Authenticated())
	assert.Equal(t, sessionID, manager.SessionID())
	assert.Equal(t, []session.Event{session.EventExpired}, events)
}

func TestClientCartRoundTrip(t *testing.T) {
	client, server, _ := newClient(t)
	c := context.Background()

	cart, err := client.AddCartItem(c, cartRequest.AddCartItem{
		ProductID:  1,
		Quantity:   2,
		Attributes: attribute.Selection{}.Set(1, attribute.ID(6)),
	})
	require.NoError(t, err)
	require.NotNil(t, cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "190", cart.Items[0].FinalPrice.String())

	cart, err = client.UpdateCartItem(c, cart.Items[0].ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "285", cart.Items[0].FinalPrice.String())

	server.OmitData("DELETE /api/cart/items/{id}")
	cart, err = client.RemoveCartItem(c, cart.Items[0].ID)
	require.NoError(t, err)
	assert.Nil(t, cart)

	fetched, err := client.GetCart(c)
	require.NoError(t, err)
	assert.Empty(t, fetched.Items)
}

func TestClientProducts(t *testing.T) {
	client, server, _ := newClient(t)
	c := context.Background()

	page, err := client.ListProducts(c, productRequest.ListProducts{Search: "mug"})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "enamel-mug", page.Products[0].Slug)

	product, err := client.GetProduct(c, "oxford-shirt")
	require.NoError(t, err)
	assert.Len(t, product.Attributes, 2)
	assert.True(t, product.Attributes[0].Required)

	_, err = client.GetProduct(c, "missing")
	assert.ErrorIs(t, err, commonErrors.ErrNotFound)

	reviews, err := client.ListReviews(c, "oxford-shirt")
	require.NoError(t, err)
	assert.Len(t, reviews, 1)

	filters, err := client.Filters(c)
	require.NoError(t, err)
	assert.Equal(t, "category", filters[0].Key)

	data, err := client.ModuleData(c, "7")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title":"Featured"`)
	assert.Equal(t, 1, server.Calls("GET /api/modules/{id}/data"))
}

func TestClientLoginSendsPassword(t *testing.T) {
	client, _, _ := newClient(t)

	auth, err := client.Login(context.Background(), userRequest.Login{Email: "ada@example.com", Password: apitest.Password})
	require.NoError(t, err)
	assert.Equal(t, apitest.Token, auth.Token)

	_, err = client.Login(context.Background(), userRequest.Login{Email: "ada@example.com", Password: "wrong"})
	assert.Equal(t, "These credentials do not match our records.", UserMessage(err))
}

func TestClientOrders(t *testing.T) {
	client, _, _ := newClient(t)
	c := context.Background()

	address, err := client.CreateAddress(c, userRequest.ShippingAddress{FullName: "Ada", Phone: "1", Line1: "1 Main", City: "London", PostalCode: "N1", Country: "GB"})
	require.NoError(t, err)

	coupon, err := client.ValidateCoupon(c, orderRequest.ValidateCoupon{Code: "save10", Subtotal: "50"})
	require.NoError(t, err)
	assert.Equal(t, "5", coupon.DiscountAmount.String())

	_, err = client.AddCartItem(c, cartRequest.AddCartItem{ProductID: 2, Quantity: 4})
	require.NoError(t, err)

	order, err := client.CreateOrder(c, orderRequest.CreateOrder{ShippingAddressID: address.ID, PaymentMethod: "cod"})
	require.NoError(t, err)
	assert.Equal(t, "50", order.Total.String())

	found, err := client.GetOrder(c, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, found.OrderNumber)

	require.NoError(t, client.DeleteAddress(c, address.ID))
	addresses, err := client.ListAddresses(c)
	require.NoError(t, err)
	assert.Empty(t, addresses)
}

func TestClientNotificationSettingsTimeout(t *testing.T) {
	server := apitest.NewServer()
	t.Cleanup(server.Close)
	server.SetNotificationDelay(time.Second)
	client := New(server.URL, nil, WithHTTPClient(server.Client()), WithNotificationTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := client.NotificationSettings(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestClientUploadAvatar(t *testing.T) {
	client, _, manager := newClient(t)
	require.NoError(t, manager.SignIn(context.Background(), apitest.Token, &session.Identity{ID: 1}))

	user, err := client.UploadAvatar(context.Background(), "me.png", strings.NewReader("png-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "/storage/avatars/me.png", user.Avatar)
}
