package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	cartCmd "github.com/Alturino/storefront/cart/cmd"
	"github.com/Alturino/storefront/internal/api"
	"github.com/Alturino/storefront/internal/common/constants"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/common/response"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/infra"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metrics"
	"github.com/Alturino/storefront/internal/middleware"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/session"
	"github.com/Alturino/storefront/internal/shopper"
	notificationCmd "github.com/Alturino/storefront/notification/cmd"
	orderCmd "github.com/Alturino/storefront/order/cmd"
	productCmd "github.com/Alturino/storefront/product/cmd"
	userCmd "github.com/Alturino/storefront/user/cmd"
	wishlistCmd "github.com/Alturino/storefront/wishlist/cmd"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// NewRouter mounts every domain behind the session middleware. /metrics and
// /healthz stay outside so scrapes never create sessions.
func NewRouter(base *api.Client, cache redis.Cmdable, productTTL time.Duration, registry *shopper.Registry) *mux.Router {
	router := mux.NewRouter()
	router.StrictSlash(true)
	router.Use(otelmux.Middleware(constants.AppStorefrontService), middleware.Logging, middleware.RecoverPanic)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response.WriteSuccess(r.Context(), w, "ok", map[string]interface{}{"shoppers": registry.Len()})
	}).Methods(http.MethodGet)

	routes := router.PathPrefix("/").Subrouter()
	routes.Use(middleware.Session(registry))
	productCmd.AttachProductRoutes(routes, base, cache, productTTL)
	cartCmd.AttachCartRoutes(routes)
	wishlistCmd.AttachWishlistRoutes(routes)
	orderCmd.AttachOrderRoutes(routes)
	userCmd.AttachUserRoutes(routes)
	notificationCmd.AttachNotificationRoutes(routes)

	return router
}

// StorageFactory picks the session storage of the HTTP service. The file
// driver is the CLI's and falls back to memory here.
func StorageFactory(cfg config.Session, cache redis.Cmdable) shopper.StorageFactory {
	if cfg.Driver == DriverRedis && cache != nil {
		return func(sessionID string) session.Storage {
			return session.NewRedisStorage(cache, sessionID, cfg.TTL)
		}
	}
	return func(string) session.Storage { return session.NewMemoryStorage() }
}

func RunStorefrontService(c context.Context, cfg *config.Config) {
	c, span := otel.Tracer.Start(c, "RunStorefrontService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppStorefrontService).
		Str(log.KeyTag, "main RunStorefrontService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	shutdownFuncs, err := inOtel.InitOtelSdk(c, constants.AppStorefrontService, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		logger.Err(err).Msg(err.Error())
		commonErrors.HandleError(err, span)
		return
	}
	logger.Info().Msg("initialized otel sdk")

	var cache *redis.Client
	if cfg.Cache.Enabled() {
		logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
		logger.Info().Msg("initializing cache")
		c = logger.WithContext(c)
		cache, err = infra.NewCacheClient(c, cfg.Cache)
		if err != nil {
			err = fmt.Errorf("failed initializing cache with error=%w", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("initialized cache")
		defer func() {
			logger := logger.With().Str(log.KeyProcess, "shutting down cache connection").Logger()
			logger.Info().Msg("shutting down cache connection")
			if err := cache.Close(); err != nil {
				err = fmt.Errorf("failed closing cache with error=%w", err)
				commonErrors.HandleError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				return
			}
			logger.Info().Msg("shutdown cache connection")
		}()
	} else {
		logger.Info().Msg("cache is not configured, products are fetched on every request")
	}

	logger = logger.With().Str(log.KeyProcess, "initializing metrics").Logger()
	logger.Info().Msg("initializing metrics")
	recorder, err := metrics.NewRecorder(prometheus.DefaultRegisterer)
	if err != nil {
		err = fmt.Errorf("failed initializing metrics with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("initialized metrics")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	base := api.New(
		cfg.Api.BaseURL,
		nil,
		api.WithHTTPClient(api.NewHTTPClient(cfg.Api.Timeout)),
		api.WithNotificationTimeout(cfg.Api.NotificationTimeout),
	)
	var cacheable redis.Cmdable
	if cache != nil {
		cacheable = cache
	}
	registry := shopper.NewRegistry(
		base,
		StorageFactory(cfg.Session, cacheable),
		recorder,
		shopper.WithCapacity(cfg.Session.MaxShoppers),
		shopper.WithIdleTTL(cfg.Session.IdleTTL),
	)
	router := NewRouter(base, cacheable, cfg.Cache.ProductTTL, registry)
	logger.Info().Str("sessionDriver", cfg.Session.Driver).Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	server := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Api.Timeout + 15*time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger := logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("encounter error=%w while running server", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("server stopped accepting requests")
	}()

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutdown server").Logger()
	logger.Info().Msg("received interuption signal shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(c), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down server with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("shutdown server")

	logger.Info().Msg("shutting down otel")
	if err := inOtel.ShutdownOtel(shutdownCtx, shutdownFuncs); err != nil {
		err = fmt.Errorf("failed shutting down otel with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("shutdown otel")
	logger.Info().Msg("server completely shutdown")
}
