// Package clientcache caches constructed SDK clients keyed by provider
// config hash, with singleflight so concurrent requests for the same key
// build the client only once.
package clientcache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache is a type-safe client cache.
type Cache[T any] struct {
	cache   sync.Map
	sfGroup singleflight.Group
}

// NewCache creates an empty cache.
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{}
}

// GetOrCreate retrieves a cached client or builds one with factory. The
// factory runs at most once per key, even under concurrent load.
func (c *Cache[T]) GetOrCreate(key string, factory func() (T, error)) (T, error) {
	if cached, ok := c.cache.Load(key); ok {
		return cached.(T), nil
	}

	v, err, _ := c.sfGroup.Do(key, func() (any, error) {
		// Double-check after acquiring the singleflight slot.
		if cached, ok := c.cache.Load(key); ok {
			return cached.(T), nil
		}

		client, err := factory()
		if err != nil {
			var zero T
			return zero, err
		}

		c.cache.Store(key, client)
		return client, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}

// Delete removes one entry.
func (c *Cache[T]) Delete(key string) {
	c.cache.Delete(key)
}

// Clear removes every entry.
func (c *Cache[T]) Clear() {
	c.cache.Range(func(key, value any) bool {
		c.cache.Delete(key)
		return true
	})
}
