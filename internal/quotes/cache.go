package quotes

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Keyspace prefixes keep the different payload kinds apart in one map.
const (
	keyQuotes = "quotes"
	keyChart  = "chart"
	keySearch = "search"
)

// CacheKey builds a cache key of the form <kind>:<param>:<param>.
func CacheKey(kind string, params ...string) string {
	return kind + ":" + strings.Join(params, ":")
}

// CanonicalSymbolKey builds the cache key for a symbol set: the requested
// symbols, trimmed and uppercased, sorted so that {A,B} and {B,A} share one
// entry. The provider-format symbols are deliberately not used here.
func CanonicalSymbolKey(symbols []string) string {
	cleaned := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	sortStrings(cleaned)
	return CacheKey(keyQuotes, strings.Join(cleaned, ","))
}

func sortStrings(s []string) {
	// Insertion sort; symbol sets are tiny
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

type cacheEntry struct {
	payload   interface{}
	fetchedAt time.Time
}

type inflightResult struct {
	payload interface{}
	err     error
}

// inflightCall lets every waiter observe the same result: the first caller
// fills result and closes done.
type inflightCall struct {
	done   chan struct{}
	result inflightResult
}

// Cache is a time-windowed in-process cache. Expiry is checked lazily at read
// time against the entry's fetch timestamp; there is no background eviction.
// Concurrent misses for one key share a single fetch.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry

	inflightMu sync.Mutex
	inflight   map[string]*inflightCall

	hits   atomic.Int64
	misses atomic.Int64

	// now is replaceable in tests
	now func() time.Time
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{
		entries:  make(map[string]cacheEntry),
		inflight: make(map[string]*inflightCall),
		now:      time.Now,
	}
}

// Get returns the cached payload for key if it is younger than ttl.
func (c *Cache) Get(key string, ttl time.Duration) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(entry.fetchedAt) >= ttl {
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return entry.payload, true
}

// Set stores a payload with the current fetch timestamp. Last write wins.
func (c *Cache) Set(key string, payload interface{}) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{payload: payload, fetchedAt: c.now()}
	c.mu.Unlock()
}

// GetOrFetch returns the cached payload or runs fetch once for all concurrent
// callers of the same key. Successful results are stored; errors are not, so
// the next request retries the provider.
func (c *Cache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func() (interface{}, error)) (interface{}, error) {
	if payload, ok := c.Get(key, ttl); ok {
		return payload, nil
	}

	call, isFirst := c.joinInflight(key)
	if !isFirst {
		select {
		case <-call.done:
			return call.result.payload, call.result.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	payload, err := fetch()
	if err == nil {
		c.Set(key, payload)
	}
	c.completeInflight(key, call, inflightResult{payload: payload, err: err})

	return payload, err
}

func (c *Cache) joinInflight(key string) (*inflightCall, bool) {
	c.inflightMu.Lock()
	defer c.inflightMu.Unlock()

	if call, exists := c.inflight[key]; exists {
		return call, false
	}

	call := &inflightCall{done: make(chan struct{})}
	c.inflight[key] = call
	return call, true
}

func (c *Cache) completeInflight(key string, call *inflightCall, result inflightResult) {
	c.inflightMu.Lock()
	delete(c.inflight, key)
	c.inflightMu.Unlock()

	call.result = result
	close(call.done)
}

// Stats reports hit/miss counters since startup
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
