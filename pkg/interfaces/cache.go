package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by CacheProvider.Get when no live entry exists.
var ErrCacheMiss = errors.New("cache: miss")

// CacheProvider stores values for a bounded time. A zero ttl keeps the entry
// until it is deleted or the cache is cleared.
type CacheProvider interface {
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
