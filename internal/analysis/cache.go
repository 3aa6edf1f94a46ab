package analysis

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/idtk/pkg/typename"
)

// DefaultCacheSize is used when a cache is requested with a non-positive size
const DefaultCacheSize = 10000

// Cache provides in-memory LRU caching of parsed descriptors
type Cache struct {
	cache *lru.Cache[string, *typename.TypeName]
}

// NewCache creates a descriptor cache with LRU eviction
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = DefaultCacheSize
	}
	cache, err := lru.New[string, *typename.TypeName](maxLen)
	if err != nil {
		cache, _ = lru.New[string, *typename.TypeName](DefaultCacheSize)
	}
	return &Cache{
		cache: cache,
	}
}

// Get returns the cached tree for key
func (c *Cache) Get(key string) (*typename.TypeName, bool) {
	return c.cache.Get(key)
}

// Set stores a parsed tree, evicting the least recently used entry at capacity
func (c *Cache) Set(key string, tn *typename.TypeName) {
	c.cache.Add(key, tn)
}

// Size returns the current cache size
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear empties the cache
func (c *Cache) Clear() {
	c.cache.Purge()
}

func cacheKey(packageHint, descriptor string) string {
	if packageHint == "" {
		return descriptor
	}
	return packageHint + "\x00" + descriptor
}
