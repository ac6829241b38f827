package cache

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is the number of results kept when no size is configured
const DefaultSize = 16

// Stats reports cache effectiveness
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// HitRate returns the cache hit rate as a percentage
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total) * 100.0
}

// ResultCache is a bounded, concurrency-safe LRU of analysis results keyed
// by content hash
type ResultCache[V any] struct {
	entries *lru.Cache[string, V]
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// NewResultCache creates a cache holding at most size results
func NewResultCache[V any](size int) (*ResultCache[V], error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[string, V](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	return &ResultCache[V]{entries: entries}, nil
}

// Get retrieves the result stored under hash
func (rc *ResultCache[V]) Get(hash string) (V, bool) {
	value, ok := rc.entries.Get(hash)
	if ok {
		rc.hits.Add(1)
	} else {
		rc.misses.Add(1)
	}
	return value, ok
}

// Set stores a result under hash, evicting the least recently used entry
// when full
func (rc *ResultCache[V]) Set(hash string, value V) {
	rc.entries.Add(hash, value)
}

// Invalidate removes the result stored under hash
func (rc *ResultCache[V]) Invalidate(hash string) {
	rc.entries.Remove(hash)
}

// InvalidateAll clears the entire cache
func (rc *ResultCache[V]) InvalidateAll() {
	rc.entries.Purge()
}

// Stats returns hit/miss counters and the current size
func (rc *ResultCache[V]) Stats() Stats {
	return Stats{
		Hits:    rc.hits.Load(),
		Misses:  rc.misses.Load(),
		Entries: rc.entries.Len(),
	}
}
