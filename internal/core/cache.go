package core

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"golang.org/x/sync/singleflight"

	"gget/internal/ports"
)

// FlightCache is the in-process cache between the resolver and the fetch
// client. It bounds capacity with LRU reclamation, expires entries by TTL,
// and guarantees at most one in-flight fetch per key: concurrent callers for
// the same key share one underlying fetch and its outcome. Failures are
// never cached, so a later call retries.
type FlightCache struct {
	capacity int
	ttl      time.Duration
	clock    func() time.Time

	flight singleflight.Group

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
}

type cacheEntry struct {
	key        string
	value      []byte
	insertedAt time.Time
}

const defaultCacheCapacity = 1000
const defaultCacheTTL = 24 * time.Hour

func NewFlightCache(capacity int, ttl time.Duration) *FlightCache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &FlightCache{
		capacity: capacity,
		ttl:      ttl,
		clock:    time.Now,
		entries:  map[string]*list.Element{},
		order:    list.New(),
	}
}

// GetOrFetch returns the cached value for key or invokes fetch exactly once
// per key across concurrent callers. A caller whose context ends while the
// shared fetch is in flight unblocks with a Canceled error; the flight
// itself continues for the remaining waiters.
func (c *FlightCache) GetOrFetch(ctx context.Context, key string, fetch ports.FetchFunc) ([]byte, error) {
	if value, ok := c.lookup(key); ok {
		return value, nil
	}
	ch := c.flight.DoChan(key, func() (interface{}, error) {
		if value, ok := c.lookup(key); ok {
			return value, nil
		}
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, value)
		return value, nil
	})
	select {
	case result := <-ch:
		if result.Err != nil {
			return nil, result.Err
		}
		return cloneBytes(result.Val.([]byte)), nil
	case <-ctx.Done():
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeCanceled).
			WithMsg("cache fetch canceled").
			WithCause(ctx.Err())
	}
}

// Invalidate drops the entry and forgets any completed flight for key so the
// next call fetches fresh.
func (c *FlightCache) Invalidate(key string) {
	c.flight.Forget(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	if element, ok := c.entries[key]; ok {
		c.order.Remove(element)
		delete(c.entries, key)
	}
}

// Len reports the number of live entries.
func (c *FlightCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *FlightCache) lookup(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	element, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry := element.Value.(*cacheEntry)
	if c.clock().Sub(entry.insertedAt) >= c.ttl {
		c.order.Remove(element)
		delete(c.entries, key)
		return nil, false
	}
	c.order.MoveToFront(element)
	return cloneBytes(entry.value), true
}

func (c *FlightCache) store(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if element, ok := c.entries[key]; ok {
		c.order.Remove(element)
		delete(c.entries, key)
	}
	entry := &cacheEntry{
		key:        key,
		value:      cloneBytes(value),
		insertedAt: c.clock(),
	}
	c.entries[key] = c.order.PushFront(entry)
	for len(c.entries) > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func cloneBytes(value []byte) []byte {
	return append([]byte(nil), value...)
}

var _ ports.CachePort = (*FlightCache)(nil)
