package mathgrade

import (
	"container/list"
	"sync"

	"golang.org/x/sync/singleflight"
)

// resultCache is a fixed-size LRU keyed by raw input. Concurrent misses for
// the same key share one computation. Entries are only ever evicted.
type resultCache[V any] struct {
	name     string
	size     int
	recorder Recorder

	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List
	flight  singleflight.Group
}

type cacheEntry[V any] struct {
	key   string
	value V
}

func newResultCache[V any](name string, size int, recorder Recorder) *resultCache[V] {
	return &resultCache[V]{
		name:     name,
		size:     size,
		recorder: recorder,
		entries:  make(map[string]*list.Element, size),
		lru:      list.New(),
	}
}

func (c *resultCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.lru.MoveToFront(el)
		return el.Value.(*cacheEntry[V]).value, true
	}
	var zero V
	return zero, false
}

func (c *resultCache[V]) add(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry[V]).value = v
		c.lru.MoveToFront(el)
		return
	}
	c.entries[key] = c.lru.PushFront(&cacheEntry[V]{key: key, value: v})
	for c.lru.Len() > c.size {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry[V]).key)
	}
}

// len reports the number of stored entries.
func (c *resultCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// getOrCompute returns the cached value for key or runs compute once for all
// concurrent callers. The value is stored only when compute reports it as
// cacheable.
func (c *resultCache[V]) getOrCompute(key string, compute func() (V, bool)) V {
	if v, ok := c.get(key); ok {
		c.recorder.ObserveCache(c.name, true)
		return v
	}
	c.recorder.ObserveCache(c.name, false)
	res, _, _ := c.flight.Do(key, func() (interface{}, error) {
		v, cacheable := compute()
		if cacheable {
			c.add(key, v)
		}
		return v, nil
	})
	return res.(V)
}
