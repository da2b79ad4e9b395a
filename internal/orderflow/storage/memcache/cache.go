// Package memcache provides an in-process fast layer for correlation state,
// used when no Redis address is configured.
package memcache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/orderlink/internal/orderflow/storage"
)

type entry struct {
	subjectID string
	expiresAt time.Time
}

// Cache provides TTL-bounded correlation lookups held in process memory.
// Entries expire lazily on access.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	clock   func() time.Time
}

// New constructs a Cache. Entries expire after ttl; a non-positive ttl
// disables expiry.
func New(ttl time.Duration) *Cache {
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		clock:   time.Now,
	}
}

// Close exists to satisfy the same lifecycle as network-backed caches.
func (c *Cache) Close() error {
	return nil
}

// Put stores one correlation entry with the cache TTL.
func (c *Cache) Put(ctx context.Context, id, subjectID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("correlation id is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.clock().Add(c.ttl)
	}
	c.entries[id] = entry{subjectID: subjectID, expiresAt: expiresAt}
	return nil
}

// Get returns the subject id for one correlation entry, or ErrNotFound
// when the entry is absent or expired.
func (c *Cache) Get(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id = strings.TrimSpace(id)

	c.mu.Lock()
	defer c.mu.Unlock()
	found, ok := c.entries[id]
	if !ok {
		return "", storage.ErrNotFound
	}
	if !found.expiresAt.IsZero() && !c.clock().Before(found.expiresAt) {
		delete(c.entries, id)
		return "", storage.ErrNotFound
	}
	return found.subjectID, nil
}

// Delete removes one correlation entry. Deleting an absent or expired entry
// reports ErrNotFound.
func (c *Cache) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)

	c.mu.Lock()
	defer c.mu.Unlock()
	found, ok := c.entries[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(c.entries, id)
	if !found.expiresAt.IsZero() && !c.clock().Before(found.expiresAt) {
		return storage.ErrNotFound
	}
	return nil
}
