// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/pdiddy/litgap/pkg/types"
)

// CacheEntry is what the cache keeps for a request: the blocking stages'
// outputs. Answers are streamed fresh every time.
type CacheEntry struct {
	Query  types.BooleanQuery
	Papers []types.PaperRecord
}

// Cache is an optional in-memory, request-keyed store. A nil *Cache is a
// valid cache that never hits.
type Cache struct {
	c *cache.Cache
}

// NewCache returns a cache whose entries expire after ttl. A non-positive
// ttl returns nil, which disables caching.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		return nil
	}
	return &Cache{c: cache.New(ttl, 2*ttl)}
}

// CacheKey identifies a request against one retrieval source. Questions are
// compared case-insensitively.
func CacheKey(source string, req Request) string {
	return fmt.Sprintf("%s|%d|%d|%s", source, req.Limit, req.Offset, strings.ToLower(strings.TrimSpace(req.Question)))
}

// Get returns the entry for key.
func (c *Cache) Get(key string) (CacheEntry, bool) {
	if c == nil {
		return CacheEntry{}, false
	}
	if x, found := c.c.Get(key); found {
		return x.(CacheEntry), true
	}
	return CacheEntry{}, false
}

// Set stores e under key with the default expiration.
func (c *Cache) Set(key string, e CacheEntry) {
	if c == nil {
		return
	}
	c.c.Set(key, e, cache.DefaultExpiration)
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.c.ItemCount()
}
