package infra

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/log"
)

var (
	cacheOnce sync.Once
	cache     *redis.Client
	cacheErr  error
)

// NewCacheClient connects once per process. The client backs the product
// cache and the redis session driver.
func NewCacheClient(c context.Context, cfg config.Cache) (*redis.Client, error) {
	c, span := otel.Tracer.Start(c, "infra NewCacheClient")
	defer span.End()

	cacheOnce.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "infra NewCacheClient").
			Str(log.KeyRequestHost, cfg.Host).
			Logger()

		logger = logger.With().Str(log.KeyProcess, "initializing redis client").Logger()
		logger.Info().Msg("initializing redis client")
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Password: cfg.Password,
			DB:       cfg.Database,
		})
		logger.Info().Msg("initialized redis client")

		logger = logger.With().Str(log.KeyProcess, "instrumenting redis client").Logger()
		logger.Info().Msg("instrumenting redis client")
		if err := redisotel.InstrumentTracing(client, redisotel.WithAttributes(semconv.DBSystemRedis)); err != nil {
			cacheErr = fmt.Errorf("failed initializing otel redis tracing with error=%w", err)
			commonErrors.HandleError(cacheErr, span)
			logger.Error().Err(cacheErr).Msg(cacheErr.Error())
			return
		}
		if err := redisotel.InstrumentMetrics(client, redisotel.WithAttributes(semconv.DBSystemRedis)); err != nil {
			cacheErr = fmt.Errorf("failed initializing otel redis metric with error=%w", err)
			commonErrors.HandleError(cacheErr, span)
			logger.Error().Err(cacheErr).Msg(cacheErr.Error())
			return
		}
		logger.Info().Msg("instrumented redis client")

		logger = logger.With().Str(log.KeyProcess, "pinging connection to redis").Logger()
		logger.Info().Msg("pinging connection to redis")
		if err := client.Ping(c).Err(); err != nil {
			cacheErr = fmt.Errorf("failed pinging redis with error=%w", err)
			commonErrors.HandleError(cacheErr, span)
			logger.Error().Err(cacheErr).Msg(cacheErr.Error())
			return
		}
		logger.Info().Msg("pinged connection to redis")
		cache = client
	})
	return cache, cacheErr
}
