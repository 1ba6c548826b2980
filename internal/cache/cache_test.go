package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "stats:inventory", Key("inventory"))
}

func TestNoop(t *testing.T) {
	var c StatsCache = Noop{}
	var dest map[string]int

	ok, err := c.Get(context.Background(), "supplier", &dest)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Set(context.Background(), "supplier", map[string]int{"total": 1}))
	assert.NoError(t, c.Invalidate(context.Background(), "supplier"))
}

func TestRedisUnreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	c := NewRedisStatsCache(rdb, time.Second)
	var dest map[string]int
	ok, err := c.Get(context.Background(), "pricing", &dest)
	assert.Error(t, err)
	assert.False(t, ok)
}
