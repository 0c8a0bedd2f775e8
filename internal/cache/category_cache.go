// category_cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// categoriesKey holds every cached category list as one hash so a catalog
// write can drop all of them with a single DEL.
const categoriesKey = "goods:categories"

// NewRedisClient connects and pings.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisCategoryCache implements service.CategoryCache on a redis hash.
// Redis failures are logged and treated as misses.
type RedisCategoryCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

func NewRedisCategoryCache(client *redis.Client, ttl time.Duration, log *logrus.Logger) *RedisCategoryCache {
	return &RedisCategoryCache{client: client, ttl: ttl, log: log}
}

func (c *RedisCategoryCache) Get(ctx context.Context, key string) ([]string, bool) {
	data, err := c.client.HGet(ctx, categoriesKey, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).WithField("key", key).Warn("category cache read failed")
		}
		return nil, false
	}

	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("category cache entry corrupt")
		return nil, false
	}
	return values, true
}

func (c *RedisCategoryCache) Set(ctx context.Context, key string, values []string) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return
	}

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, categoriesKey, key, data)
	pipe.Expire(ctx, categoriesKey, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("category cache write failed")
	}
}

func (c *RedisCategoryCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, categoriesKey).Err(); err != nil {
		c.log.WithError(err).Warn("category cache invalidation failed")
	}
}

// Noop is used when no redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]string, bool) { return nil, false }

func (Noop) Set(context.Context, string, []string) {}

func (Noop) Invalidate(context.Context) {}
