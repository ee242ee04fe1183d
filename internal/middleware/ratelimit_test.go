package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCheckRateLimit(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	rdb := setupTestRedis(t)
	ctx := context.Background()

	t.Run("Allows Up To Limit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed, "request %d should be allowed", i+1)
		}

		allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed, "request over the limit should be blocked")
	})

	t.Run("Separate Keys Do Not Interfere", func(t *testing.T) {
		allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:9.9.9.9", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = CheckRateLimit(ctx, rdb, "register", "ip:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Fails Open Without Redis", func(t *testing.T) {
		allowed, err := CheckRateLimit(ctx, nil, "login", "ip:1.2.3.4", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Test Env Bypasses", func(t *testing.T) {
		t.Setenv("APP_ENV", "test")
		for i := 0; i < 10; i++ {
			allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:5.5.5.5", 1, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
	})
}
