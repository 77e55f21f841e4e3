package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir string, name string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestValidateCountsSourceFiles(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "tree.gno", "package avl\n\nimport \"gno.land/p/demo/ufmt\"\n")
	writeSource(t, filepath.Join(dir, "nested"), "node.gno", "package avl\n")
	writeSource(t, dir, "README.md", "not source, not validated")

	service := NewService(t.TempDir())
	result, err := service.Validate(t.Context(), ValidateRequest{Dir: dir})
	require.NoError(t, err)
	require.Equal(t, 2, result.SourceFiles)
}

func TestValidateRejectsBrokenSource(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "good.gno", "package avl\n")
	writeSource(t, dir, "broken.gno", "package {{ not gno\n")

	service := NewService(t.TempDir())
	_, err := service.Validate(t.Context(), ValidateRequest{Dir: dir})
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	require.Contains(t, err.Error(), "broken.gno")
}

func TestValidateRejectsEmptyDirectory(t *testing.T) {
	service := NewService(t.TempDir())

	_, err := service.Validate(t.Context(), ValidateRequest{Dir: t.TempDir()})
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	_, err = service.Validate(t.Context(), ValidateRequest{Dir: ""})
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
