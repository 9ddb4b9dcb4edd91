package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisCache_Unreachable(t *testing.T) {
	_, err := NewRedisCache(context.Background(), Config{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestRedisCache_GetSet(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx := context.Background()
	c, err := NewRedisCache(ctx, Config{Addr: addr})
	require.NoError(t, err)
	defer c.Close()

	key := "test/" + time.Now().Format(time.RFC3339Nano)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, []byte("<html></html>"), time.Minute))

	body, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "<html></html>", string(body))
}
