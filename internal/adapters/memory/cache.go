package memory

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-partials/pkg/interfaces"
)

// Cache is an in-process interfaces.CacheProvider with per-entry expiry.
// Expired entries are dropped lazily on access.
type Cache struct {
	mu    sync.RWMutex
	now   func() time.Time
	store map[string]cacheEntry
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache constructs an empty cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		now:   time.Now,
		store: map[string]cacheEntry{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ interfaces.CacheProvider = (*Cache)(nil)

func (c *Cache) Get(ctx context.Context, key string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	entry, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		if current, still := c.store[key]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(c.store, key)
		}
		c.mu.Unlock()
		return nil, interfaces.ErrCacheMiss
	}
	return entry.value, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := cacheEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.store[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
	return nil
}

func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.store = map[string]cacheEntry{}
	c.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
