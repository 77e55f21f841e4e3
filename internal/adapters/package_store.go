package adapters

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"gget/internal/ports"
)

// DiskStore is the persistent package cache consulted before network
// fetches. Entries are content-addressed by key hash and carry a TTL
// envelope; writes go through a temp file and rename so a crash never leaves
// a half-written entry behind.
type DiskStore struct {
	Root  string
	TTL   time.Duration
	Clock func() time.Time

	cleanupMu *sync.Mutex
}

const defaultStoreTTL = 24 * time.Hour

func NewDiskStore(root string, ttl time.Duration) DiskStore {
	if ttl <= 0 {
		ttl = defaultStoreTTL
	}
	return DiskStore{
		Root:      root,
		TTL:       ttl,
		Clock:     time.Now,
		cleanupMu: &sync.Mutex{},
	}
}

// DefaultStoreRoot returns the package cache directory under the user's
// cache home.
func DefaultStoreRoot() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to locate user cache directory").
			WithCause(err)
	}
	return filepath.Join(base, "gget", "packages"), nil
}

type storeEnvelope struct {
	Key        string `yaml:"key"`
	Content    string `yaml:"content"`
	InsertedAt int64  `yaml:"inserted_at"`
	TTLSeconds int64  `yaml:"ttl_seconds"`
}

func (s DiskStore) Get(key string) ([]byte, bool, error) {
	path := s.entryPath(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read cache entry").
			WithCause(err)
	}
	var envelope storeEnvelope
	if err := yaml.Unmarshal(raw, &envelope); err != nil {
		// a corrupt entry behaves like a miss and is rewritten on Set
		_ = os.Remove(path)
		return nil, false, nil
	}
	if s.expired(envelope) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	content, err := base64.StdEncoding.DecodeString(envelope.Content)
	if err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return content, true, nil
}

func (s DiskStore) Set(key string, value []byte) error {
	path := s.entryPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create cache directory").
			WithCause(err)
	}
	envelope := storeEnvelope{
		Key:        key,
		Content:    base64.StdEncoding.EncodeToString(value),
		InsertedAt: s.now().Unix(),
		TTLSeconds: int64(s.TTL / time.Second),
	}
	raw, err := yaml.Marshal(envelope)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode cache entry").
			WithCause(err)
	}
	return writeFileAtomic(path, raw, 0644)
}

func (s DiskStore) Invalidate(key string) error {
	err := os.Remove(s.entryPath(key))
	if err != nil && !os.IsNotExist(err) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to remove cache entry").
			WithCause(err)
	}
	return nil
}

// Cleanup sweeps expired entries. Only one sweep runs at a time; concurrent
// callers queue behind the mutex.
func (s DiskStore) Cleanup() error {
	s.cleanupMu.Lock()
	defer s.cleanupMu.Unlock()
	subdirs, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read cache directory").
			WithCause(err)
	}
	for _, subdir := range subdirs {
		if !subdir.IsDir() {
			continue
		}
		dir := filepath.Join(s.Root, subdir.Name())
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			raw, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			var envelope storeEnvelope
			if err := yaml.Unmarshal(raw, &envelope); err != nil || s.expired(envelope) {
				_ = os.Remove(path)
			}
		}
	}
	return nil
}

func (s DiskStore) entryPath(key string) string {
	sum := fmt.Sprintf("%016x", xxhash.Sum64String(key))
	return filepath.Join(s.Root, sum[:2], sum+".yaml")
}

func (s DiskStore) expired(envelope storeEnvelope) bool {
	expiry := time.Unix(envelope.InsertedAt, 0).Add(time.Duration(envelope.TTLSeconds) * time.Second)
	return !s.now().Before(expiry)
}

func (s DiskStore) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// writeFileAtomic stages content in a temp file next to the destination and
// renames it into place, so the final name is never visible with partial
// content.
func writeFileAtomic(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".gget-tmp-*")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create staging file").
			WithCause(err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write staging file").
			WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to close staging file").
			WithCause(err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to set staging file mode").
			WithCause(err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to move staging file into place").
			WithCause(err)
	}
	tmpPath = ""
	return nil
}

// StoreKeyForList is the cache key namespace for package file listings.
func StoreKeyForList(pkg string) string {
	return "files:" + strings.TrimSpace(pkg)
}

// StoreKeyForFile is the cache key namespace for file contents.
func StoreKeyForFile(path string) string {
	return "file:" + strings.TrimSpace(path)
}

var _ ports.PackageStorePort = DiskStore{}
