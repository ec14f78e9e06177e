// Package cache provides a generic loader cache combining LRU storage with
// singleflight to coalesce concurrent loads for the same key.
package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// LoaderCache loads values on miss via a callback and coalesces concurrent
// loads for the same key using singleflight. Without singleflight, a burst of
// N concurrent misses for the same key (e.g. the same profile text being
// re-embedded) would trigger N upstream calls; with it, one load runs and the
// rest share that result.
type LoaderCache[V any] struct {
	lru   *lru.Cache[string, V]
	group singleflight.Group
}

// NewLoaderCache creates a loader cache holding at most maxEntries values.
func NewLoaderCache[V any](maxEntries int) (*LoaderCache[V], error) {
	lruCache, err := lru.New[string, V](maxEntries)
	if err != nil {
		return nil, err
	}

	return &LoaderCache[V]{lru: lruCache}, nil
}

// Get returns the value for key, loading it via load on cache miss.
// On miss, only one goroutine runs load() for that key; others block and
// receive the same result. Load errors are not cached.
func (c *LoaderCache[V]) Get(ctx context.Context, key string, load func(context.Context, string) (V, error)) (V, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}

	val, err, _ := c.group.Do(key, func() (any, error) {
		loaded, loadErr := load(ctx, key)
		if loadErr != nil {
			return zero[V](), loadErr
		}

		c.lru.Add(key, loaded)

		return loaded, nil
	})
	if err != nil {
		return zero[V](), err
	}

	return val.(V), nil
}

func zero[V any]() (z V) { return z }

// Invalidate removes the entry for key.
func (c *LoaderCache[V]) Invalidate(key string) {
	c.lru.Remove(key)
}

// Len returns the number of entries in the cache.
func (c *LoaderCache[V]) Len() int {
	return c.lru.Len()
}
