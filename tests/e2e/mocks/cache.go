package mocks

import (
	"context"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/godilite/cs-dashboard/pkg/cache"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// InMemoryCache stores JSON-encoded values like the redis cache does, so
// round trips through it exercise the same encoding.
type InMemoryCache struct {
	mu       sync.Mutex
	data     map[string]cacheEntry
	getCalls int
	hits     int
	setCalls int
}

type cacheEntry struct {
	raw    []byte
	expiry time.Time
}

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{data: make(map[string]cacheEntry)}
}

func (c *InMemoryCache) Get(ctx context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.getCalls++
	e, ok := c.data[key]
	if !ok || time.Now().After(e.expiry) {
		return cache.ErrMiss
	}
	c.hits++
	return json.Unmarshal(e.raw, dest)
}

func (c *InMemoryCache) Set(ctx context.Context, key string, value any, exp time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.setCalls++
	c.data[key] = cacheEntry{raw: raw, expiry: time.Now().Add(exp)}
	return nil
}

func (c *InMemoryCache) Close() error {
	return nil
}

// Stats returns the number of Get calls, hits and Set calls so far.
func (c *InMemoryCache) Stats() (gets, hits, sets int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getCalls, c.hits, c.setCalls
}
