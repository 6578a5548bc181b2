package session

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/Alturino/storefront/internal/apitest"
)

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
	if err := client.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}
	return client
}

func TestRedisStorage(t *testing.T) {
	client := setupRedis(t)
	c := context.Background()

	first := NewRedisStorage(client, "browser-a", time.Hour)
	second := NewRedisStorage(client, "browser-b", time.Hour)

	require.NoError(t, first.Set(c, KeyAuthToken, "token-a"))

	v, ok, err := first.Get(c, KeyAuthToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "token-a", v)

	_, ok, err = second.Get(c, KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := client.TTL(c, "storefront:session:browser-a:auth_token").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	m, err := NewManager(c, first)
	require.NoError(t, err)
	assert.Equal(t, "token-a", m.Token())
	require.NoError(t, m.SignOut(c))

	_, ok, err = first.Get(c, KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok)
}
