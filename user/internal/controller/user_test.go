package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/api"
	"github.com/Alturino/storefront/internal/apitest"
	commonHttp "github.com/Alturino/storefront/internal/common/http"
	"github.com/Alturino/storefront/internal/middleware"
	"github.com/Alturino/storefront/internal/shopper"
	"github.com/Alturino/storefront/user/internal/service"
)

func newRouter(t *testing.T) *mux.Router {
	t.Helper()
	server := apitest.NewServer(apitest.Mug())
	t.Cleanup(server.Close)
	registry := shopper.NewRegistry(api.New(server.URL, nil, api.WithHTTPClient(server.Client())), nil, nil)

	router := mux.NewRouter()
	router.Use(middleware.Session(registry))
	AttachUserController(router, service.NewUserService())
	AttachAddressController(router, service.NewAddressService())
	return router
}

func serve(router *mux.Router, method, target, sessionID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(commonHttp.HeaderContentType, commonHttp.HeaderValueJson)
	if sessionID != "" {
		req.Header.Set(commonHttp.HeaderSessionID, sessionID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUserControllerLogin(t *testing.T) {
	tests := []struct {
		name               string
		body               string
		expectedStatusCode int
		expectedMessage    string
	}{
		{
			name:               "given valid credentials should return user",
			body:               `{"email":"ada@example.com","password":"password"}`,
			expectedStatusCode: http.StatusOK,
			expectedMessage:    "Welcome back, Ada Lovelace.",
		},
		{
			name:               "given wrong password should return api message",
			body:               `{"email":"ada@example.com","password":"nope"}`,
			expectedStatusCode: http.StatusUnprocessableEntity,
			expectedMessage:    "These credentials do not match our records.",
		},
		{
			name:               "given invalid email should return bad request",
			body:               `{"email":"ada","password":"password"}`,
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "given malformed body should return bad request",
			body:               `{`,
			expectedStatusCode: http.StatusBadRequest,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			router := newRouter(t)

			rec := serve(router, http.MethodPost, "/auth/login", "", test.body)

			assert.Equal(t, test.expectedStatusCode, rec.Code)
			if test.expectedMessage != "" {
				body := map[string]any{}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, test.expectedMessage, body["message"])
			}
		})
	}
}

func TestUserControllerSessionKeepsLogin(t *testing.T) {
	router := newRouter(t)

	rec := serve(router, http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	sessionID := rec.Header().Get(commonHttp.HeaderSessionID)
	require.NotEmpty(t, sessionID)

	rec = serve(router, http.MethodPost, "/auth/login", sessionID, `{"email":"ada@example.com","password":"password"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodGet, "/auth/me", sessionID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ada@example.com")

	rec = serve(router, http.MethodPost, "/auth/logout", sessionID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodGet, "/auth/me", sessionID, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddressController(t *testing.T) {
	router := newRouter(t)
	address := `{"full_name":"Ada Lovelace","phone":"+441234567890","address_line_1":"12 St James's Square","city":"London","postal_code":"SW1Y 4JH","country":"GB"}`

	rec := serve(router, http.MethodPost, "/addresses", "", address)
	require.Equal(t, http.StatusCreated, rec.Code)
	sessionID := rec.Header().Get(commonHttp.HeaderSessionID)

	rec = serve(router, http.MethodGet, "/addresses", sessionID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SW1Y 4JH")

	rec = serve(router, http.MethodPost, "/addresses", sessionID, `{"full_name":"Ada","country":"Britain"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, http.MethodDelete, "/addresses/42", sessionID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(router, http.MethodDelete, "/addresses/abc", sessionID, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
