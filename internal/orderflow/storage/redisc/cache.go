// Package redisc provides a Redis-backed fast layer for correlation state.
package redisc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/louisbranch/orderlink/internal/orderflow/storage"
	"github.com/louisbranch/orderlink/internal/platform/timeouts"
)

const keyPrefix = "orderlink:correlation:"

// Cache provides TTL-bounded correlation lookups backed by Redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New constructs a Cache over an established Redis client. Entries expire
// after ttl; a non-positive ttl disables expiry.
func New(client *redis.Client, ttl time.Duration) (*Cache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{client: client, ttl: ttl}, nil
}

// Open dials a Redis server and verifies connectivity.
func Open(ctx context.Context, addr string, ttl time.Duration) (*Cache, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, ttl)
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Put stores one correlation entry with the cache TTL.
func (c *Cache) Put(ctx context.Context, id, subjectID string) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("cache is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("correlation id is required")
	}
	opCtx, cancel := context.WithTimeout(ctx, timeouts.FastLayer)
	defer cancel()
	if err := c.client.Set(opCtx, keyPrefix+id, subjectID, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Get returns the subject id for one correlation entry, or ErrNotFound
// when the entry is absent or expired.
func (c *Cache) Get(ctx context.Context, id string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("cache is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("correlation id is required")
	}
	opCtx, cancel := context.WithTimeout(ctx, timeouts.FastLayer)
	defer cancel()
	subjectID, err := c.client.Get(opCtx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("cache get: %w", err)
	}
	return subjectID, nil
}

// Delete removes one correlation entry. Deleting an absent entry reports
// ErrNotFound.
func (c *Cache) Delete(ctx context.Context, id string) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("cache is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("correlation id is required")
	}
	opCtx, cancel := context.WithTimeout(ctx, timeouts.FastLayer)
	defer cancel()
	removed, err := c.client.Del(opCtx, keyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	if removed == 0 {
		return storage.ErrNotFound
	}
	return nil
}
