// Package rediscache keeps EMI quotes in redis so that every bank process
// sharing the server reuses them.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a quote stays cached. Loan rates change rarely.
const DefaultTTL = 24 * time.Hour

// Cache implements bank.QuoteCache on a redis client.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New connects to the redis server at addr and checks that it answers.
func New(ctx context.Context, addr string) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not reach redis at %s: %w", addr, err)
	}
	return NewFromClient(rdb), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client) *Cache {
	return &Cache{client: client, prefix: "bank:", ttl: DefaultTTL}
}

// WithTTL returns a copy of c whose entries expire after ttl. Zero means never.
func (c *Cache) WithTTL(ttl time.Duration) *Cache {
	d := *c
	d.ttl = ttl
	return &d
}

// Get returns the cached value of key. A missing key is not an error.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores value under key.
func (c *Cache) Set(ctx context.Context, key, value string) error {
	return c.client.Set(ctx, c.prefix+key, value, c.ttl).Err()
}

// Close closes the underlying client.
func (c *Cache) Close() error { return c.client.Close() }
