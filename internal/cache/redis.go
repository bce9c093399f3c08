// Package cache provides a Redis-backed read cache for catalog listings.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mhalvorsen/stockroom/internal/catalog"
)

const keyPrefix = "stockroom:"

// ProductCache implements catalog.Cache on Redis. Every operation is
// best-effort: backend errors are logged and reported as cache misses so
// the store stays the source of truth.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at addr and verifies the connection with a ping.
func New(addr string, ttl time.Duration) (*ProductCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	return &ProductCache{client: client, ttl: ttl}, nil
}

func (c *ProductCache) GetList(ctx context.Context, key string) (*catalog.ListResult, bool) {
	data, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}

	var res catalog.ListResult
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		slog.Warn("cache entry corrupt, dropping", "key", key, "error", err)
		c.client.Del(ctx, keyPrefix+key)
		return nil, false
	}
	return &res, true
}

func (c *ProductCache) SetList(ctx context.Context, key string, res *catalog.ListResult) {
	data, err := json.Marshal(res)
	if err != nil {
		slog.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
}

// Flush drops every cached listing. Called after any catalog write so
// readers never see pre-write pages.
func (c *ProductCache) Flush(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	keys := []string{}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("cache scan failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("cache flush failed", "keys", len(keys), "error", err)
	}
}

// Close releases the Redis connection.
func (c *ProductCache) Close() error {
	return c.client.Close()
}
