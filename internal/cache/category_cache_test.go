package cache

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) (*RedisCategoryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewRedisCategoryCache(client, 5*time.Minute, log), mr
}

func TestRedisCategoryCache_SetGet(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	_, ok := c.Get(ctx, "categories")
	assert.False(t, ok)

	c.Set(ctx, "categories", []string{"Food", "Tools"})
	c.Set(ctx, "subcategories:Food", nil)

	values, ok := c.Get(ctx, "categories")
	require.True(t, ok)
	assert.Equal(t, []string{"Food", "Tools"}, values)

	values, ok = c.Get(ctx, "subcategories:Food")
	require.True(t, ok)
	assert.Empty(t, values)

	assert.True(t, mr.Exists(categoriesKey))
	assert.Equal(t, 5*time.Minute, mr.TTL(categoriesKey))
}

func TestRedisCategoryCache_Expires(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "categories", []string{"Food"})
	mr.FastForward(6 * time.Minute)

	_, ok := c.Get(ctx, "categories")
	assert.False(t, ok)
}

func TestRedisCategoryCache_Invalidate(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "categories", []string{"Food"})
	c.Set(ctx, "subcategories:Food", []string{"Grain"})
	c.Invalidate(ctx)

	assert.False(t, mr.Exists(categoriesKey))
	_, ok := c.Get(ctx, "subcategories:Food")
	assert.False(t, ok)
}

func TestRedisCategoryCache_ServerDownIsMiss(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()
	c.Set(ctx, "categories", []string{"Food"})

	mr.Close()

	_, ok := c.Get(ctx, "categories")
	assert.False(t, ok)
	assert.NotPanics(t, func() {
		c.Set(ctx, "categories", []string{"Food"})
		c.Invalidate(ctx)
	})
}

func TestRedisCategoryCache_CorruptEntry(t *testing.T) {
	c, mr := setupTestCache(t)
	mr.HSet(categoriesKey, "categories", "not json")

	_, ok := c.Get(context.Background(), "categories")
	assert.False(t, ok)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), mr.Addr(), "")
	require.NoError(t, err)
	client.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), mr.Addr(), "")
	assert.Error(t, err)
}
