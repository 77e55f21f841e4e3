package core

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"gget/internal/adapters"
	"gget/internal/ports"
	"gget/internal/types"
)

// CachedFetcher is the cache layer wired between the resolver and the fetch
// client. Lookups go memory first, then the persistent store, then the
// network; force-refresh skips both caches and rewrites them on success.
type CachedFetcher struct {
	RPC   ports.RPCPort
	Cache ports.CachePort
	Store ports.PackageStorePort
	Force bool
}

func NewCachedFetcher(rpc ports.RPCPort, cache ports.CachePort, store ports.PackageStorePort, force bool) CachedFetcher {
	return CachedFetcher{
		RPC:   rpc,
		Cache: cache,
		Store: store,
		Force: force,
	}
}

func (f CachedFetcher) ListFiles(ctx context.Context, pkg types.PackagePath) ([]string, error) {
	key := adapters.StoreKeyForList(pkg.String())
	payload, err := f.getOrFetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		files, err := f.RPC.ListFiles(ctx, pkg)
		if err != nil {
			return nil, err
		}
		return []byte(strings.Join(files, "\n")), nil
	})
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(string(payload), "\n") {
		if line == "" {
			continue
		}
		files = append(files, line)
	}
	return files, nil
}

func (f CachedFetcher) GetFile(ctx context.Context, pkg types.PackagePath, filename string) ([]byte, error) {
	key := adapters.StoreKeyForFile(pkg.FilePath(filename))
	return f.getOrFetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		return f.RPC.GetFile(ctx, pkg, filename)
	})
}

func (f CachedFetcher) getOrFetch(ctx context.Context, key string, fetch ports.FetchFunc) ([]byte, error) {
	if f.Force {
		f.Cache.Invalidate(key)
		if f.Store != nil {
			if err := f.Store.Invalidate(key); err != nil {
				log.Warn().Str("key", key).Err(err).Msg("failed to invalidate stored entry")
			}
		}
	}
	return f.Cache.GetOrFetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		if f.Store != nil && !f.Force {
			value, ok, err := f.Store.Get(key)
			if err != nil {
				log.Warn().Str("key", key).Err(err).Msg("failed to read stored entry")
			} else if ok {
				return value, nil
			}
		}
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if f.Store != nil {
			if err := f.Store.Set(key, value); err != nil {
				log.Warn().Str("key", key).Err(err).Msg("failed to persist entry")
			}
		}
		return value, nil
	})
}

var _ ports.RPCPort = CachedFetcher{}
