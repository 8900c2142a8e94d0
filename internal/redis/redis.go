package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/artsmartiaux/association-go/internal/config"
	"github.com/go-redis/redis/v8"
)

// Client caches rendered public listings. All methods are best-effort: a
// cache miss and a cache failure look the same to callers.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewClient(cfg *config.Config) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       0,
	})

	return &Client{rdb: rdb, ttl: cfg.CacheTTL}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// GetJSON loads a cached value into dest. Returns false on miss or on any
// cache error.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// SetJSON stores a value under key with the configured TTL.
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key, data, c.ttl)
}

// InvalidateEvents drops every cached event listing. Called after each
// successful synchronization so the public site picks up changes immediately.
func (c *Client) InvalidateEvents(ctx context.Context) {
	if c == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, "events:*", 100).Iterator()
	for iter.Next(ctx) {
		c.rdb.Del(ctx, iter.Val())
	}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
