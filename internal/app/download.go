package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"gget/internal/adapters"
	"gget/internal/core"
	"gget/internal/types"
)

// Download resolves a root package (optionally with its transitive imports)
// and materializes every resolved file under the output directory. Warnings
// and per-file write failures are reported in the result; only root-package
// and output-root failures abort the run.
func (s Service) Download(ctx context.Context, req DownloadRequest) (DownloadResult, error) {
	root, err := types.ParsePackagePath(req.Package)
	if err != nil {
		return DownloadResult{}, err
	}
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return DownloadResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}
	target := filepath.Join(outputDir, filepath.FromSlash(root.String()))
	if !req.Force && dirExistsNonEmpty(target) {
		return DownloadResult{}, errbuilder.New().
			WithCode(errbuilder.CodeAlreadyExists).
			WithMsg("package already exists at " + target + "; use --force to overwrite")
	}

	rpc := adapters.NewRPCClientAdapter(adapters.RPCConfig{Endpoint: req.RPCEndpoint})
	cache := core.NewFlightCache(0, 0)
	fetcher := core.NewCachedFetcher(rpc, cache, s.Store, req.Force)
	resolver := core.NewResolver(fetcher, s.Parser, core.ResolverConfig{
		Concurrency: req.Concurrency,
		MaxPackages: req.MaxPackages,
		ResolveDeps: req.ResolveDeps,
	})

	result, err := resolver.Resolve(ctx, root)
	if err != nil {
		return DownloadResult{}, err
	}
	for _, warning := range result.Warnings {
		log.Warn().
			Str("package", warning.Package.String()).
			Str("file", warning.File).
			Msg(warning.Reason)
	}

	output := adapters.NewFileOutputAdapter(outputDir)
	summary, err := output.WriteFiles(result.Files)
	if err != nil {
		return DownloadResult{}, err
	}
	order := result.Graph.TopologicalOrder()
	if err := output.WriteManifest(result, order); err != nil {
		return DownloadResult{}, err
	}

	return DownloadResult{
		Root:         root,
		Packages:     order,
		FilesWritten: summary.Written,
		Failed:       summary.Failed,
		Warnings:     result.Warnings,
	}, nil
}

func dirExistsNonEmpty(path string) bool {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	return len(entries) > 0
}
