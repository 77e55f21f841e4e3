package adapters

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"gget/internal/ports"
	"gget/internal/types"
)

// FileOutputAdapter materializes resolved files under
// <Dir>/<package>/<filename>. Each file is staged and renamed into place; a
// file that fails to write is reported in the summary without aborting its
// siblings.
type FileOutputAdapter struct {
	Dir string
}

const manifestFilename = "gget.manifest.yaml"

func NewFileOutputAdapter(dir string) FileOutputAdapter {
	return FileOutputAdapter{Dir: dir}
}

func (a FileOutputAdapter) WriteFiles(entries []types.FileEntry) (types.WriteSummary, error) {
	if a.Dir == "" {
		return types.WriteSummary{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	ordered := append([]types.FileEntry(nil), entries...)
	types.SortFileEntries(ordered)

	summary := types.WriteSummary{}
	for _, entry := range ordered {
		target := filepath.Join(a.Dir, filepath.FromSlash(entry.Package.String()), entry.Name)
		if err := a.writeEntry(entry, target); err != nil {
			log.Warn().
				Str("package", entry.Package.String()).
				Str("file", entry.Name).
				Err(err).
				Msg("failed to write file")
			summary.Failed = append(summary.Failed, types.WriteFailure{
				Path:   target,
				Reason: err.Error(),
			})
			continue
		}
		summary.Written = append(summary.Written, target)
	}
	return summary, nil
}

func (a FileOutputAdapter) writeEntry(entry types.FileEntry, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create package directory").
			WithCause(err)
	}
	return writeFileAtomic(target, entry.Content, 0644)
}

type manifest struct {
	Root     string            `yaml:"root"`
	Packages []manifestPackage `yaml:"packages"`
	Warnings int               `yaml:"warnings"`
}

type manifestPackage struct {
	Path    string   `yaml:"path"`
	Files   []string `yaml:"files"`
	Imports []string `yaml:"imports,omitempty"`
}

// WriteManifest records the resolved package set in deployment order
// (dependencies before dependents) at the output root.
func (a FileOutputAdapter) WriteManifest(result types.ResolutionResult, order []types.PackagePath) error {
	if a.Dir == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	filesByPackage := map[types.PackagePath][]string{}
	for _, entry := range result.Files {
		filesByPackage[entry.Package] = append(filesByPackage[entry.Package], entry.Name)
	}
	doc := manifest{
		Root:     result.Root.String(),
		Warnings: len(result.Warnings),
	}
	for _, pkg := range order {
		entry := manifestPackage{
			Path:  pkg.String(),
			Files: filesByPackage[pkg],
		}
		for _, imported := range result.Graph.Imports(pkg) {
			entry.Imports = append(entry.Imports, imported.String())
		}
		doc.Packages = append(doc.Packages, entry)
	}
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode manifest").
			WithCause(err)
	}
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	return writeFileAtomic(filepath.Join(a.Dir, manifestFilename), raw, 0644)
}

var _ ports.OutputPort = FileOutputAdapter{}
