package e2e

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gget/tests/testutil"
)

func TestGetCommandE2E(t *testing.T) {
	root := testutil.RepoRoot(t)
	fixture := testutil.NewRPCFixture(t)
	fixture.AddFile("gno.land/p/demo/avl", "tree.gno",
		"package avl\n\nimport \"gno.land/p/demo/ufmt\"\n")
	fixture.AddFile("gno.land/p/demo/ufmt", "ufmt.gno", "package ufmt\n")

	outDir := t.TempDir()
	cmd := exec.Command("go", "run", "./cmd/gget", "get", "gno.land/p/demo/avl",
		"--rpc-endpoint", fixture.Endpoint(),
		"--cache-dir", t.TempDir(),
		"--output", outDir,
		"--resolve-deps",
	)
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "GO111MODULE=on")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	require.Contains(t, string(out), "downloaded: gno.land/p/demo/avl")

	require.FileExists(t, filepath.Join(outDir, "gno.land", "p", "demo", "avl", "tree.gno"))
	require.FileExists(t, filepath.Join(outDir, "gno.land", "p", "demo", "ufmt", "ufmt.gno"))
	require.FileExists(t, filepath.Join(outDir, "gget.manifest.yaml"))
}

func TestValidateCommandE2E(t *testing.T) {
	root := testutil.RepoRoot(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tree.gno"),
		[]byte("package avl\n"), 0644))

	cmd := exec.Command("go", "run", "./cmd/gget", "validate", dir)
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "GO111MODULE=on")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	require.Contains(t, string(out), "validated: 1 source files")
}
