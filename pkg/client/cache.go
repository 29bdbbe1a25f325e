package client

import (
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// HandleCache maps paths below the mount root to directory handles. Entries
// expire after the TTL and the least recently used entry is evicted when
// the cache is full.
type HandleCache struct {
	mu      sync.RWMutex
	maxSize int
	ttl     time.Duration
	paths   *expirable.LRU[string, []byte]
	handles *expirable.LRU[string, string]
}

// NewHandleCache creates a new file handle cache. A maxSize of zero means
// unbounded.
func NewHandleCache(maxSize int, ttl time.Duration) *HandleCache {
	c := &HandleCache{maxSize: maxSize, ttl: ttl}
	c.reset()
	return c
}

func (c *HandleCache) reset() {
	c.paths = expirable.NewLRU[string, []byte](c.maxSize, nil, c.ttl)
	c.handles = expirable.NewLRU[string, string](c.maxSize, nil, c.ttl)
}

// StorePathHandle stores a path-to-handle mapping in the cache
func (c *HandleCache) StorePathHandle(path string, handle []byte) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.paths.Add(path, append([]byte(nil), handle...))
}

// StoreHandlePath stores a handle-to-path mapping in the cache
func (c *HandleCache) StoreHandlePath(handle []byte, path string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.handles.Add(string(handle), path)
}

// GetHandle retrieves a file handle for a path from the cache
func (c *HandleCache) GetHandle(path string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paths.Get(path)
}

// GetPath retrieves a path for a file handle from the cache
func (c *HandleCache) GetPath(handle []byte) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handles.Get(string(handle))
}

// Invalidate drops path and everything below it.
func (c *HandleCache) Invalidate(path string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	prefix := strings.TrimSuffix(path, "/") + "/"
	for _, p := range c.paths.Keys() {
		if p == path || strings.HasPrefix(p, prefix) {
			if h, ok := c.paths.Peek(p); ok {
				c.handles.Remove(string(h))
			}
			c.paths.Remove(p)
		}
	}
}

// Len reports the number of cached paths.
func (c *HandleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paths.Len()
}

// Clear empties the cache.
func (c *HandleCache) Clear() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.paths.Purge()
	c.handles.Purge()
}

// SetTTL replaces the cache with an empty one using the new TTL.
func (c *HandleCache) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
	c.reset()
}
