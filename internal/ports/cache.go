package ports

import "context"

// FetchFunc produces the value for a cache key on a miss.
type FetchFunc func(ctx context.Context) ([]byte, error)

// CachePort deduplicates repeated and concurrent requests for the same key.
// For a fixed key at most one fetch is in flight system-wide; a failed fetch
// is surfaced to every waiter and is not cached.
type CachePort interface {
	GetOrFetch(ctx context.Context, key string, fetch FetchFunc) ([]byte, error)
	Invalidate(key string)
}
