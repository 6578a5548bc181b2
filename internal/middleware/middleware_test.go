package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/api"
	"github.com/Alturino/storefront/internal/apitest"
	commonHttp "github.com/Alturino/storefront/internal/common/http"
	"github.com/Alturino/storefront/internal/shopper"
)

func newRouter(t *testing.T) (*mux.Router, *shopper.Registry) {
	t.Helper()
	server := apitest.NewServer(apitest.Mug())
	t.Cleanup(server.Close)
	registry := shopper.NewRegistry(api.New(server.URL, nil, api.WithHTTPClient(server.Client())), nil, nil)

	router := mux.NewRouter()
	router.Use(Session(registry))
	router.HandleFunc("/whoami", func(w http.ResponseWriter, r *http.Request) {
		s, ok := shopper.FromContext(r.Context())
		require.True(t, ok)
		_, _ = io.WriteString(w, s.Session.Token())
	})
	return router, registry
}

func TestSession(t *testing.T) {
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name               string
		authorization      string
		expectedStatusCode int
		expectedBody       string
	}{
		{
			name:               "given no credentials should issue anonymous session",
			expectedStatusCode: http.StatusOK,
			expectedBody:       "",
		},
		{
			name:               "given bearer token should adopt token",
			authorization:      commonHttp.BearerPrefix + apitest.Token,
			expectedStatusCode: http.StatusOK,
			expectedBody:       apitest.Token,
		},
		{
			name:               "given expired token should return unauthorized",
			authorization:      commonHttp.BearerPrefix + expired,
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "given basic auth should return unauthorized",
			authorization:      "Basic Zm9vOmJhcg==",
			expectedStatusCode: http.StatusUnauthorized,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			router, _ := newRouter(t)
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if test.authorization != "" {
				req.Header.Set(commonHttp.HeaderAuthorization, test.authorization)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, test.expectedStatusCode, rec.Code)
			if test.expectedStatusCode == http.StatusOK {
				assert.Equal(t, test.expectedBody, rec.Body.String())
				assert.NotEmpty(t, rec.Header().Get(commonHttp.HeaderSessionID))
			}
		})
	}
}

func TestSessionIsReused(t *testing.T) {
	router, registry := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	sessionID := rec.Header().Get(commonHttp.HeaderSessionID)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(commonHttp.HeaderSessionID, sessionID)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, sessionID, rec.Header().Get(commonHttp.HeaderSessionID))
	assert.Equal(t, 1, registry.Len())
}

func TestLoggingMasksSecrets(t *testing.T) {
	buffer := bytes.Buffer{}
	logger := zerolog.New(&buffer).Level(zerolog.TraceLevel)

	var body map[string]string
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		zerolog.Ctx(r.Context()).Info().Msg("handled")
	}))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ada@example.com","password":"hunter22"}`))
	req.Header.Set(commonHttp.HeaderContentType, commonHttp.HeaderValueJson)
	req.Header.Set(commonHttp.HeaderRequestID, "req-9")
	req = req.WithContext(logger.WithContext(req.Context()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, "hunter22", body["password"])
	assert.Equal(t, "req-9", rec.Header().Get(commonHttp.HeaderRequestID))
	assert.NotContains(t, buffer.String(), "hunter22")
	assert.Contains(t, buffer.String(), "ada@example.com")
}

func TestRecoverPanic(t *testing.T) {
	handler := RecoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}
