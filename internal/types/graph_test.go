package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestGraphDeduplicatesEdges(t *testing.T) {
	graph := NewDependencyGraph()
	graph.AddEdge("a", "b")
	graph.AddEdge("a", "b")
	graph.AddEdge("a", "c")

	require.Equal(t, 3, graph.NodeCount())
	require.Equal(t, 2, graph.EdgeCount())
	if diff := cmp.Diff([]PackagePath{"b", "c"}, graph.Imports("a")); diff != "" {
		t.Fatalf("unexpected imports (-want +got):\n%s", diff)
	}
}

func TestTopologicalOrderDependenciesFirst(t *testing.T) {
	graph := NewDependencyGraph()
	// app imports lib and util; lib imports util
	graph.AddEdge("gno.land/r/demo/app", "gno.land/p/demo/lib")
	graph.AddEdge("gno.land/r/demo/app", "gno.land/p/demo/util")
	graph.AddEdge("gno.land/p/demo/lib", "gno.land/p/demo/util")

	want := []PackagePath{
		"gno.land/p/demo/util",
		"gno.land/p/demo/lib",
		"gno.land/r/demo/app",
	}
	if diff := cmp.Diff(want, graph.TopologicalOrder()); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestTopologicalOrderWithCycle(t *testing.T) {
	graph := NewDependencyGraph()
	graph.AddEdge("a", "b")
	graph.AddEdge("b", "a")
	graph.AddEdge("a", "leaf")

	order := graph.TopologicalOrder()
	require.Len(t, order, 3)
	require.Equal(t, PackagePath("leaf"), order[0])
	// cycle members follow in path order
	if diff := cmp.Diff([]PackagePath{"a", "b"}, order[1:]); diff != "" {
		t.Fatalf("unexpected cycle remainder (-want +got):\n%s", diff)
	}
}

func TestSortFileEntries(t *testing.T) {
	entries := []FileEntry{
		{Package: "b", Name: "x.gno"},
		{Package: "a", Name: "z.gno"},
		{Package: "a", Name: "a.gno"},
	}
	SortFileEntries(entries)
	require.Equal(t, PackagePath("a"), entries[0].Package)
	require.Equal(t, "a.gno", entries[0].Name)
	require.Equal(t, "z.gno", entries[1].Name)
	require.Equal(t, PackagePath("b"), entries[2].Package)
}
