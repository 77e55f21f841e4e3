package types

import "sort"

// ImportEdge is a discovered dependency from one package to another.
// Duplicate edges between the same pair collapse to one.
type ImportEdge struct {
	From PackagePath
	To   PackagePath
}

// DependencyGraph is a directed graph over package paths. Cycles are a
// legitimate structure; the graph is append-only during a resolution run.
// The graph is not synchronized; callers serialize mutation.
type DependencyGraph struct {
	nodes map[PackagePath]struct{}
	edges map[ImportEdge]struct{}
	deps  map[PackagePath][]PackagePath
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: map[PackagePath]struct{}{},
		edges: map[ImportEdge]struct{}{},
		deps:  map[PackagePath][]PackagePath{},
	}
}

func (g *DependencyGraph) AddNode(pkg PackagePath) {
	g.nodes[pkg] = struct{}{}
}

func (g *DependencyGraph) HasNode(pkg PackagePath) bool {
	_, ok := g.nodes[pkg]
	return ok
}

// AddEdge records an import edge, registering both endpoints as nodes.
func (g *DependencyGraph) AddEdge(from PackagePath, to PackagePath) {
	g.AddNode(from)
	g.AddNode(to)
	edge := ImportEdge{From: from, To: to}
	if _, ok := g.edges[edge]; ok {
		return
	}
	g.edges[edge] = struct{}{}
	g.deps[from] = append(g.deps[from], to)
}

func (g *DependencyGraph) NodeCount() int {
	return len(g.nodes)
}

func (g *DependencyGraph) EdgeCount() int {
	return len(g.edges)
}

// Nodes returns all package paths in sorted order.
func (g *DependencyGraph) Nodes() []PackagePath {
	nodes := make([]PackagePath, 0, len(g.nodes))
	for node := range g.nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	return nodes
}

// Edges returns all import edges sorted by (from, to).
func (g *DependencyGraph) Edges() []ImportEdge {
	edges := make([]ImportEdge, 0, len(g.edges))
	for edge := range g.edges {
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// Imports returns the packages imported by pkg, sorted.
func (g *DependencyGraph) Imports(pkg PackagePath) []PackagePath {
	imports := append([]PackagePath(nil), g.deps[pkg]...)
	sort.Slice(imports, func(i, j int) bool { return imports[i] < imports[j] })
	return imports
}

// TopologicalOrder returns a deployment order with dependencies before their
// dependents. Ties break by path so the order is deterministic. Members of
// import cycles cannot be ordered and are appended in path order at the end.
func (g *DependencyGraph) TopologicalOrder() []PackagePath {
	inDegree := map[PackagePath]int{}
	dependents := map[PackagePath][]PackagePath{}
	for node := range g.nodes {
		inDegree[node] = 0
	}
	for edge := range g.edges {
		inDegree[edge.From]++
		dependents[edge.To] = append(dependents[edge.To], edge.From)
	}

	var ready []PackagePath
	for node, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, node)
		}
	}

	order := make([]PackagePath, 0, len(g.nodes))
	emitted := map[PackagePath]struct{}{}
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		emitted[next] = struct{}{}
		for _, dependent := range dependents[next] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	// cycle members keep a positive in-degree
	var remainder []PackagePath
	for node := range g.nodes {
		if _, ok := emitted[node]; !ok {
			remainder = append(remainder, node)
		}
	}
	sort.Slice(remainder, func(i, j int) bool { return remainder[i] < remainder[j] })
	return append(order, remainder...)
}
