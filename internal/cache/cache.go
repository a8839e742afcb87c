package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Cache is a process-local TTL cache with single-flight fetches:
// concurrent lookups for the same missing key share one upstream call.
// Expired entries are discarded lazily on read; no sweeper runs.
type Cache struct {
	store *gocache.Cache
	group singleflight.Group
}

// New creates a cache. Entry TTLs are supplied per Put/GetOrFetch call.
func New() *Cache {
	// Cleanup interval 0 disables the janitor; go-cache still treats
	// expired entries as missing on Get.
	return &Cache{
		store: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get returns the cached value for key, if present and fresh.
func (c *Cache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

// Put stores value under key with the given TTL.
func (c *Cache) Put(key string, value interface{}, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

// GetOrFetch returns the cached value for key or executes fetch,
// caching a successful result for ttl. At most one fetch per key is in
// flight at any instant; all waiters observe the same outcome.
func (c *Cache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	if value, ok := c.store.Get(key); ok {
		return value, nil
	}

	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: another caller may have
		// populated the key while we queued.
		if value, ok := c.store.Get(key); ok {
			return value, nil
		}
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store.Set(key, value, ttl)
		return value, nil
	})
	return value, err
}

// GetOrFetchTyped is a typed wrapper around Cache.GetOrFetch.
func GetOrFetchTyped[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	value, err := c.GetOrFetch(ctx, key, ttl, func(ctx context.Context) (interface{}, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("cache: unexpected value type under key %q", key)
	}
	return typed, nil
}
