// Package cache provides a generic, thread-safe LRU cache with metrics.
//
// The FHIR importer keeps its compiled FHIRPath predicates here so that a
// code is compiled once per process, whatever the number of bundles.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	ac "github.com/gofhir/anthrocheck"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 100

// Cache is a generic thread-safe LRU cache with built-in metrics.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	items    map[K]*list.Element
	order    *list.List
	capacity int

	// shared receives hit and miss counts when set
	shared *ac.Metrics

	hits   atomic.Uint64
	misses atomic.Uint64
	evicts atomic.Uint64
	sets   atomic.Uint64
}

// item is the payload of a list element.
type item[K comparable, V any] struct {
	key   K
	value V
}

// Option configures a Cache.
type Option func(*settings)

type settings struct {
	metrics *ac.Metrics
}

// WithMetrics mirrors hits and misses into m.
func WithMetrics(m *ac.Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// New creates a new Cache with the specified capacity.
// When the cache is full, the least recently used item is evicted.
func New[K comparable, V any](capacity int, opts ...Option) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return &Cache[K, V]{
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
		capacity: capacity,
		shared:   s.metrics,
	}
}

// Get retrieves a value and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(key)
}

// lookup must be called with mu held.
func (c *Cache[K, V]) lookup(key K) (V, bool) {
	el, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		if c.shared != nil {
			c.shared.RecordCacheMiss()
		}
		var zero V
		return zero, false
	}

	c.hits.Add(1)
	if c.shared != nil {
		c.shared.RecordCacheHit()
	}
	c.order.MoveToFront(el)
	return el.Value.(*item[K, V]).value, true
}

// Set adds or updates a value in the cache.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(key, value)
}

// store must be called with mu held.
func (c *Cache[K, V]) store(key K, value V) {
	c.sets.Add(1)

	if el, ok := c.items[key]; ok {
		el.Value.(*item[K, V]).value = value
		c.order.MoveToFront(el)
		return
	}

	if len(c.items) >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			delete(c.items, oldest.Value.(*item[K, V]).key)
			c.order.Remove(oldest)
			c.evicts.Add(1)
		}
	}

	c.items[key] = c.order.PushFront(&item[K, V]{key: key, value: value})
}

// GetOrLoad returns the cached value for key, or calls load and caches its
// result. Errors are returned and not cached. The lock is held while load
// runs, so concurrent callers for the same key load once.
func (c *Cache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	v, err := load()
	if err != nil {
		var zero V
		return zero, err
	}
	c.store(key, v)
	return v, nil
}

// Delete removes an item from the cache.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		delete(c.items, key)
		c.order.Remove(el)
	}
}

// Len returns the current number of items in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes all items from the cache.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.items)
	c.order.Init()
}

// Stats holds cache statistics.
type Stats struct {
	Size     int
	Capacity int
	Hits     uint64
	Misses   uint64
	Evicts   uint64
	Sets     uint64
	HitRate  float64
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	size := c.Len()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Size:     size,
		Capacity: c.capacity,
		Hits:     hits,
		Misses:   misses,
		Evicts:   c.evicts.Load(),
		Sets:     c.sets.Load(),
		HitRate:  hitRate,
	}
}
