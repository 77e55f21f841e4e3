package core

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"gget/internal/types"
)

// fakeRPC serves packages from memory and counts round trips.
type fakeRPC struct {
	packages map[types.PackagePath]map[string]string
	listing  map[types.PackagePath][]string
	calls    atomic.Int32

	mu        sync.Mutex
	listCalls map[types.PackagePath]int
}

func newFakeRPC() *fakeRPC {
	return &fakeRPC{
		packages:  map[types.PackagePath]map[string]string{},
		listing:   map[types.PackagePath][]string{},
		listCalls: map[types.PackagePath]int{},
	}
}

func (f *fakeRPC) add(pkg types.PackagePath, name string, content string) {
	if f.packages[pkg] == nil {
		f.packages[pkg] = map[string]string{}
	}
	f.packages[pkg][name] = content
	f.listing[pkg] = append(f.listing[pkg], name)
}

func (f *fakeRPC) listCallsFor(pkg types.PackagePath) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls[pkg]
}

func (f *fakeRPC) ListFiles(ctx context.Context, pkg types.PackagePath) ([]string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.listCalls[pkg]++
	f.mu.Unlock()
	files, ok := f.listing[pkg]
	if !ok {
		return nil, errNotFound(pkg.String())
	}
	return append([]string(nil), files...), nil
}

func (f *fakeRPC) GetFile(ctx context.Context, pkg types.PackagePath, filename string) ([]byte, error) {
	f.calls.Add(1)
	content, ok := f.packages[pkg][filename]
	if !ok {
		return nil, errNotFound(pkg.FilePath(filename))
	}
	return []byte(content), nil
}

// memStore is an in-memory PackageStorePort standing in for the disk cache.
type memStore struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{entries: map[string][]byte{}}
}

func (s *memStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.entries[key]
	return value, ok, nil
}

func (s *memStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append([]byte(nil), value...)
	return nil
}

func (s *memStore) Invalidate(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *memStore) Cleanup() error { return nil }

func TestCachedFetcherMemoryTier(t *testing.T) {
	rpc := newFakeRPC()
	rpc.add("gno.land/p/demo/avl", "tree.gno", "package avl")
	fetcher := NewCachedFetcher(rpc, NewFlightCache(10, time.Hour), nil, false)

	for i := 0; i < 3; i++ {
		files, err := fetcher.ListFiles(t.Context(), "gno.land/p/demo/avl")
		require.NoError(t, err)
		if diff := cmp.Diff([]string{"tree.gno"}, files); diff != "" {
			t.Fatalf("unexpected files (-want +got):\n%s", diff)
		}
	}
	require.Equal(t, int32(1), rpc.calls.Load())
}

func TestCachedFetcherWarmStoreSkipsNetwork(t *testing.T) {
	rpc := newFakeRPC()
	rpc.add("gno.land/p/demo/avl", "tree.gno", "package avl")
	store := newMemStore()

	first := NewCachedFetcher(rpc, NewFlightCache(10, time.Hour), store, false)
	_, err := first.ListFiles(t.Context(), "gno.land/p/demo/avl")
	require.NoError(t, err)
	content, err := first.GetFile(t.Context(), "gno.land/p/demo/avl", "tree.gno")
	require.NoError(t, err)
	require.Equal(t, []byte("package avl"), content)
	require.Equal(t, int32(2), rpc.calls.Load())

	// a fresh process run with a cold memory cache but warm store
	second := NewCachedFetcher(rpc, NewFlightCache(10, time.Hour), store, false)
	files, err := second.ListFiles(t.Context(), "gno.land/p/demo/avl")
	require.NoError(t, err)
	require.Equal(t, []string{"tree.gno"}, files)
	content, err = second.GetFile(t.Context(), "gno.land/p/demo/avl", "tree.gno")
	require.NoError(t, err)
	require.Equal(t, []byte("package avl"), content)
	require.Equal(t, int32(2), rpc.calls.Load(), "warm store must issue zero additional fetches")
}

func TestCachedFetcherForceBypassesStore(t *testing.T) {
	rpc := newFakeRPC()
	rpc.add("gno.land/p/demo/avl", "tree.gno", "fresh content")
	store := newMemStore()
	require.NoError(t, store.Set("file:gno.land/p/demo/avl/tree.gno", []byte("stale content")))

	fetcher := NewCachedFetcher(rpc, NewFlightCache(10, time.Hour), store, true)
	content, err := fetcher.GetFile(t.Context(), "gno.land/p/demo/avl", "tree.gno")
	require.NoError(t, err)
	require.Equal(t, []byte("fresh content"), content)
	require.Equal(t, int32(1), rpc.calls.Load())

	// the refetched value replaces the stale stored entry
	stored, ok, err := store.Get("file:gno.land/p/demo/avl/tree.gno")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("fresh content"), stored)
}

func TestCachedFetcherPropagatesFailure(t *testing.T) {
	rpc := newFakeRPC()
	fetcher := NewCachedFetcher(rpc, NewFlightCache(10, time.Hour), nil, false)

	_, err := fetcher.ListFiles(t.Context(), "gno.land/p/none")
	require.Error(t, err)

	// the failure was not cached; the next call reaches the network again
	_, err = fetcher.ListFiles(t.Context(), "gno.land/p/none")
	require.Error(t, err)
	require.Equal(t, int32(2), rpc.calls.Load())
}
