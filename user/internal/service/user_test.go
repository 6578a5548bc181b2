package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/api"
	"github.com/Alturino/storefront/internal/apitest"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/shopper"
	"github.com/Alturino/storefront/user/pkg/request"
)

func newShopper(t *testing.T) (*shopper.Shopper, *apitest.Server) {
	t.Helper()
	server := apitest.NewServer(apitest.Mug())
	t.Cleanup(server.Close)
	registry := shopper.NewRegistry(api.New(server.URL, nil, api.WithHTTPClient(server.Client())), nil, nil)
	s, err := registry.Resolve(context.Background(), "", "")
	require.NoError(t, err)
	return s, server
}

func TestUserServiceLogin(t *testing.T) {
	tests := []struct {
		name            string
		param           request.Login
		expectedErr     bool
		expectedMessage string
	}{
		{
			name:  "given valid credentials should sign in",
			param: request.Login{Email: "ada@example.com", Password: apitest.Password},
		},
		{
			name:            "given wrong password should surface field message",
			param:           request.Login{Email: "ada@example.com", Password: "wrong"},
			expectedErr:     true,
			expectedMessage: "These credentials do not match our records.",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, server := newShopper(t)
			svc := NewUserService()

			user, err := svc.Login(context.Background(), s, test.param)

			if test.expectedErr {
				require.Error(t, err)
				assert.Equal(t, test.expectedMessage, api.UserMessage(err))
				assert.False(t, s.Session.State().Authenticated())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Ada Lovelace", user.Name)
			state := s.Session.State()
			assert.Equal(t, apitest.Token, state.Token)
			require.NotNil(t, state.User)
			assert.Equal(t, int64(1), state.User.ID)
			assert.Equal(t, 1, server.Calls("GET /api/cart"))
			assert.Equal(t, 1, server.Calls("GET /api/wishlist"))
		})
	}
}

func TestUserServiceRegisterAndLogout(t *testing.T) {
	s, _ := newShopper(t)
	svc := NewUserService()
	c := context.Background()
	sessionID := s.Session.SessionID()

	user, err := svc.Register(c, s, request.Register{
		Name:                 "Grace",
		Email:                "grace@example.com",
		Password:             "password1",
		PasswordConfirmation: "password1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace", user.Name)
	assert.True(t, s.Session.State().Authenticated())

	require.NoError(t, svc.Logout(c, s))
	state := s.Session.State()
	assert.False(t, state.Authenticated())
	assert.Nil(t, state.User)
	assert.Equal(t, sessionID, state.SessionID)
}

func TestUserServiceProfile(t *testing.T) {
	s, _ := newShopper(t)
	svc := NewUserService()
	c := context.Background()

	_, err := svc.Me(c, s)
	assert.True(t, errors.Is(err, commonErrors.ErrUnauthorized))

	_, err = svc.Login(c, s, request.Login{Email: "ada@example.com", Password: apitest.Password})
	require.NoError(t, err)

	user, err := svc.UpdateProfile(c, s, request.UpdateProfile{Name: "Ada King"})
	require.NoError(t, err)
	assert.Equal(t, "Ada King", user.Name)
	assert.Equal(t, "Ada King", s.Session.State().User.Name)

	user, err = svc.UploadAvatar(c, s, "ada.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "/storage/avatars/ada.png", user.Avatar)
	assert.Equal(t, user.Avatar, s.Session.State().User.Avatar)

	user, err = svc.Me(c, s)
	require.NoError(t, err)
	assert.Equal(t, "Ada King", user.Name)
}

func TestUserServiceMeExpiredToken(t *testing.T) {
	s, server := newShopper(t)
	svc := NewUserService()
	c := context.Background()

	_, err := svc.Login(c, s, request.Login{Email: "ada@example.com", Password: apitest.Password})
	require.NoError(t, err)
	server.FailNext("GET /api/auth/me", apitest.Failure{StatusCode: http.StatusUnauthorized, Message: "Unauthenticated."})

	_, err = svc.Me(c, s)

	require.Error(t, err)
	assert.False(t, s.Session.State().Authenticated())
}

func TestAddressService(t *testing.T) {
	s, server := newShopper(t)
	svc := NewAddressService()
	c := context.Background()
	param := request.ShippingAddress{
		FullName:   "Ada Lovelace",
		Phone:      "+441234567890",
		Line1:      "12 St James's Square",
		City:       "London",
		PostalCode: "SW1Y 4JH",
		Country:    "GB",
	}

	created, err := svc.Create(c, s, param)
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	param.City = "Marylebone"
	updated, err := svc.Update(c, s, created.ID, param)
	require.NoError(t, err)
	assert.Equal(t, "Marylebone", updated.City)

	addresses, err := svc.List(c, s)
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.Equal(t, "Marylebone", addresses[0].City)

	require.NoError(t, svc.Delete(c, s, created.ID))
	err = svc.Delete(c, s, created.ID)
	assert.True(t, errors.Is(err, commonErrors.ErrNotFound))
	assert.Equal(t, 2, server.Calls("DELETE /api/shipping-addresses/{id}"))

	_, err = svc.Create(c, s, request.ShippingAddress{})
	require.Error(t, err)
	assert.Equal(t, "The full name field is required.", api.UserMessage(err))
}
