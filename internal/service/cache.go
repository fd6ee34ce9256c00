package service

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mmcdole/kinoteka/internal/domain"
)

const (
	// ResultCacheSize is the maximum number of cached result pages
	ResultCacheSize = 50

	// ResultCacheTTL is how long a cached page is served without a request
	ResultCacheTTL = 5 * time.Minute
)

var (
	resultCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kinoteka_result_cache_hits_total",
		Help: "Search result cache hits.",
	})
	resultCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kinoteka_result_cache_misses_total",
		Help: "Search result cache misses, including expired entries.",
	})
)

// CacheEntry is one cached page of results
type CacheEntry struct {
	Items    []domain.Movie
	Total    int
	StoredAt time.Time
}

// ResultCache holds recent result pages keyed by request key.
// Reads never refresh recency, so the oldest insertion is evicted first.
type ResultCache struct {
	mu    sync.Mutex
	cache *lru.Cache[string, CacheEntry]
	ttl   time.Duration
	now   func() time.Time
}

// NewResultCache creates a cache with the given capacity and TTL.
// A nil clock uses time.Now.
func NewResultCache(size int, ttl time.Duration, now func() time.Time) *ResultCache {
	if now == nil {
		now = time.Now
	}
	cache, err := lru.New[string, CacheEntry](size)
	if err != nil {
		// Only a non-positive size fails
		cache, _ = lru.New[string, CacheEntry](ResultCacheSize)
	}
	return &ResultCache{cache: cache, ttl: ttl, now: now}
}

// Get returns a fresh entry for key
func (c *ResultCache) Get(key string) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache.Peek(key)
	if !ok || c.now().Sub(entry.StoredAt) > c.ttl {
		resultCacheMisses.Inc()
		return CacheEntry{}, false
	}
	resultCacheHits.Inc()
	return entry, true
}

// Set stores a page under key, making it the newest insertion
func (c *ResultCache) Set(key string, items []domain.Movie, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Remove(key)
	c.cache.Add(key, CacheEntry{Items: items, Total: total, StoredAt: c.now()})
}

// Contains reports whether key is stored, fresh or not
func (c *ResultCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Contains(key)
}

// Len returns the number of stored entries
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}
