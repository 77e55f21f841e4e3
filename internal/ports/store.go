package ports

// PackageStorePort is the persistent on-disk cache consulted before network
// fetches. It outlives a single process run, unlike CachePort.
type PackageStorePort interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Invalidate(key string) error
	Cleanup() error
}
