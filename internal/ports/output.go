package ports

import "gget/internal/types"

// OutputPort materializes resolved files on local storage. Writes are atomic
// per file; a failed file is reported in the summary without aborting
// siblings.
type OutputPort interface {
	WriteFiles(entries []types.FileEntry) (types.WriteSummary, error)
	WriteManifest(result types.ResolutionResult, order []types.PackagePath) error
}
