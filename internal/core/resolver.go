package core

import (
	"context"
	"errors"
	"strings"
	"sync"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"gget/internal/ports"
	"gget/internal/types"
)

// Resolver computes the closed set of packages and files reachable from a
// root package's transitive imports. Traversal is concurrent; the final
// graph and file set are independent of traversal order.
type Resolver struct {
	RPC    ports.RPCPort
	Parser ports.ImportParserPort
	Config ResolverConfig
}

type ResolverConfig struct {
	// Domain is the import prefix that resolves to remote packages; imports
	// outside it (standard-library style) are ignored.
	Domain      string
	Concurrency int
	// MaxPackages is the safety valve against unbounded graphs.
	MaxPackages int
	// ResolveDeps toggles import extraction. When false only the root
	// package is fetched and the graph carries no edges.
	ResolveDeps bool
	// WarnNonSource records a warning for files skipped because they are
	// not Gno source.
	WarnNonSource bool
}

const DefaultDomain = "gno.land/"

const defaultResolverConcurrency = 4
const defaultMaxPackages = 512

const gnoSourceSuffix = ".gno"

func NewResolver(rpc ports.RPCPort, parser ports.ImportParserPort, cfg ResolverConfig) Resolver {
	if strings.TrimSpace(cfg.Domain) == "" {
		cfg.Domain = DefaultDomain
	}
	if !strings.HasSuffix(cfg.Domain, "/") {
		cfg.Domain += "/"
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultResolverConcurrency
	}
	if cfg.MaxPackages <= 0 {
		cfg.MaxPackages = defaultMaxPackages
	}
	return Resolver{
		RPC:    rpc,
		Parser: parser,
		Config: cfg,
	}
}

// resolution is the shared mutable state across worker goroutines. The
// visited set doubles as the graph's node set guard: check-and-mark happens
// under one lock so no package is ever fetched twice.
type resolution struct {
	mu       sync.Mutex
	visited  map[types.PackagePath]struct{}
	failed   map[types.PackagePath]struct{}
	graph    *types.DependencyGraph
	files    []types.FileEntry
	warnings []types.Warning
}

func (s *resolution) markFailed(pkg types.PackagePath) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed[pkg] = struct{}{}
}

func (s *resolution) warn(pkg types.PackagePath, file string, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, types.Warning{Package: pkg, File: file, Reason: reason})
}

func (s *resolution) addFile(entry types.FileEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, entry)
}

func (s *resolution) addEdge(from types.PackagePath, to types.PackagePath) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.AddEdge(from, to)
}

// Resolve runs the traversal from root. Failures on the root package are
// fatal; failures on dependency packages degrade to warnings with the edge
// dropped. Cancellation aborts the run without a partial result.
func (r Resolver) Resolve(ctx context.Context, root types.PackagePath) (types.ResolutionResult, error) {
	assert.NotEmpty(ctx, r.Config.Domain, "resolver domain must be set")
	if root == "" {
		return types.ResolutionResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("root package path is required")
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, r.Config.Concurrency)
	state := &resolution{
		visited: map[types.PackagePath]struct{}{},
		failed:  map[types.PackagePath]struct{}{},
		graph:   types.NewDependencyGraph(),
	}

	var schedule func(pkg types.PackagePath, isRoot bool)
	schedule = func(pkg types.PackagePath, isRoot bool) {
		state.mu.Lock()
		if _, seen := state.visited[pkg]; seen {
			state.mu.Unlock()
			return
		}
		state.visited[pkg] = struct{}{}
		state.graph.AddNode(pkg)
		tooLarge := len(state.visited) > r.Config.MaxPackages
		state.mu.Unlock()

		g.Go(func() error {
			if tooLarge {
				return errbuilder.New().
					WithCode(errbuilder.CodeResourceExhausted).
					WithMsg("dependency graph exceeds the configured package limit")
			}
			return r.fetchPackage(gctx, sem, state, pkg, isRoot, schedule)
		})
	}

	schedule(root, true)
	if err := g.Wait(); err != nil {
		if isCancellation(err) {
			return types.ResolutionResult{}, errbuilder.New().
				WithCode(errbuilder.CodeCanceled).
				WithMsg("resolution canceled").
				WithCause(err)
		}
		return types.ResolutionResult{}, err
	}

	types.SortFileEntries(state.files)
	types.SortWarnings(state.warnings)
	return types.ResolutionResult{
		Root:     root,
		Files:    state.files,
		Graph:    pruneFailed(state.graph, state.failed),
		Warnings: state.warnings,
	}, nil
}

// pruneFailed rebuilds the graph without packages whose file list could not
// be fetched: their edges are dropped, leaving only resolved packages.
func pruneFailed(graph *types.DependencyGraph, failed map[types.PackagePath]struct{}) *types.DependencyGraph {
	if len(failed) == 0 {
		return graph
	}
	pruned := types.NewDependencyGraph()
	for _, node := range graph.Nodes() {
		if _, ok := failed[node]; !ok {
			pruned.AddNode(node)
		}
	}
	for _, edge := range graph.Edges() {
		if _, ok := failed[edge.From]; ok {
			continue
		}
		if _, ok := failed[edge.To]; ok {
			continue
		}
		pruned.AddEdge(edge.From, edge.To)
	}
	return pruned
}

// fetchPackage lists a package, fetches each file, and extracts imports.
// Newly discovered imports are scheduled before the package finishes, so
// sibling packages overlap up to the semaphore bound.
func (r Resolver) fetchPackage(
	ctx context.Context,
	sem chan struct{},
	state *resolution,
	pkg types.PackagePath,
	isRoot bool,
	schedule func(types.PackagePath, bool),
) error {
	select {
	case sem <- struct{}{}:
		defer func() { <-sem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	files, err := r.RPC.ListFiles(ctx, pkg)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if isRoot {
			return err
		}
		log.Warn().Str("package", pkg.String()).Err(err).Msg("skipping unresolvable dependency")
		state.markFailed(pkg)
		state.warn(pkg, "", "file list fetch failed: "+err.Error())
		return nil
	}

	for _, name := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		content, err := r.RPC.GetFile(ctx, pkg, name)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if isRoot {
				return err
			}
			state.warn(pkg, name, "file fetch failed: "+err.Error())
			continue
		}
		state.addFile(types.FileEntry{Package: pkg, Name: name, Content: content})

		if !r.Config.ResolveDeps {
			continue
		}
		if !strings.HasSuffix(name, gnoSourceSuffix) {
			if r.Config.WarnNonSource {
				state.warn(pkg, name, "skipped non-source file")
			}
			continue
		}
		imports, err := r.Parser.ParseImports(content)
		if err != nil {
			// the file stays in the output; it just contributes no edges
			state.warn(pkg, name, "import parse failed: "+err.Error())
			continue
		}
		for _, imported := range imports {
			if !strings.HasPrefix(imported, r.Config.Domain) {
				continue
			}
			dep, err := types.ParsePackagePath(imported)
			if err != nil {
				state.warn(pkg, name, "invalid import path: "+imported)
				continue
			}
			if dep == pkg {
				continue
			}
			state.addEdge(pkg, dep)
			schedule(dep, false)
		}
	}
	return nil
}

func isCancellation(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	code := errbuilder.CodeOf(err)
	return code == errbuilder.CodeCanceled || code == errbuilder.CodeDeadlineExceeded
}
