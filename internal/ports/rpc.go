package ports

import (
	"context"

	"gget/internal/types"
)

// RPCPort is the fetch client boundary: one logical request, one network
// round trip, complete bytes or an error, never partial content.
type RPCPort interface {
	ListFiles(ctx context.Context, pkg types.PackagePath) ([]string, error)
	GetFile(ctx context.Context, pkg types.PackagePath, filename string) ([]byte, error)
}
