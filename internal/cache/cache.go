// Package cache keeps the stats overviews in Redis between writes
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sergioamr/farm-management/pkg/config"
	"github.com/sergioamr/farm-management/prometheus"
)

// StatsCache stores one JSON overview per entity
type StatsCache interface {
	// Get decodes the cached overview into dest and reports whether it was present
	Get(ctx context.Context, entity string, dest interface{}) (bool, error)
	Set(ctx context.Context, entity string, v interface{}) error
	Invalidate(ctx context.Context, entity string) error
}

// Key is the Redis key of an entity overview
func Key(entity string) string {
	return "stats:" + entity
}

// NewRedisClient builds a client from config. It does not dial.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisStatsCache is a StatsCache backed by Redis with a fixed TTL
type RedisStatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStatsCache creates a RedisStatsCache
func NewRedisStatsCache(rdb *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{rdb: rdb, ttl: ttl}
}

func (c *RedisStatsCache) Get(ctx context.Context, entity string, dest interface{}) (bool, error) {
	val, err := c.rdb.Get(ctx, Key(entity)).Bytes()
	if errors.Is(err, redis.Nil) {
		prometheus.RecordCacheLookup("miss")
		return false, nil
	}
	if err != nil {
		prometheus.RecordCacheLookup("error")
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		prometheus.RecordCacheLookup("error")
		return false, err
	}
	prometheus.RecordCacheLookup("hit")
	return true, nil
}

func (c *RedisStatsCache) Set(ctx context.Context, entity string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, Key(entity), b, c.ttl).Err()
}

func (c *RedisStatsCache) Invalidate(ctx context.Context, entity string) error {
	return c.rdb.Del(ctx, Key(entity)).Err()
}

// Noop never holds anything
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) (bool, error) { return false, nil }

func (Noop) Set(context.Context, string, interface{}) error { return nil }

func (Noop) Invalidate(context.Context, string) error { return nil }
