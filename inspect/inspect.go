// Package inspect captures the dependency graph of a property.Runtime for
// debugging: as plain data, as Graphviz DOT or as a text table.
package inspect

import (
	"cmp"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/bindgraph/property"
)

// Graph is a point-in-time copy of a runtime's nodes and edges, sorted so
// two snapshots of the same graph compare equal.
type Graph struct {
	Nodes []property.Node
	Edges []property.Edge
}

// Snapshot copies the current graph. Repeated edges between the same pair
// are collapsed.
func Snapshot(rt *property.Runtime) *Graph {
	nodes := mapset.NewThreadUnsafeSet[property.Node]()
	edges := mapset.NewThreadUnsafeSet[property.Edge]()

	rt.VisitNodes(func(n property.Node) bool {
		nodes.Add(n)
		return true
	})
	rt.VisitEdges(func(e property.Edge) bool {
		edges.Add(e)
		nodes.Add(e.Source)
		nodes.Add(e.Dependent)
		return true
	})

	g := &Graph{
		Nodes: nodes.ToSlice(),
		Edges: edges.ToSlice(),
	}
	slices.SortFunc(g.Nodes, compareNodes)
	slices.SortFunc(g.Edges, func(a, b property.Edge) int {
		if c := compareNodes(a.Dependent, b.Dependent); c != 0 {
			return c
		}
		return compareNodes(a.Source, b.Source)
	})
	return g
}

func compareNodes(a, b property.Node) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if a.Holder != b.Holder {
		if a.Holder {
			return 1
		}
		return -1
	}
	return cmp.Compare(a.ID, b.ID)
}

// Named drops nodes without a name and every edge touching one.
func (g *Graph) Named() *Graph {
	out := &Graph{}
	for _, n := range g.Nodes {
		if n.Name != "" {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, e := range g.Edges {
		if e.Source.Name != "" && e.Dependent.Name != "" {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}

// Sources lists what n read during its last evaluation.
func (g *Graph) Sources(n property.Node) []property.Node {
	var out []property.Node
	for _, e := range g.Edges {
		if e.Dependent == n {
			out = append(out, e.Source)
		}
	}
	return out
}

// Dependents lists what would be flagged dirty if n changed.
func (g *Graph) Dependents(n property.Node) []property.Node {
	var out []property.Node
	for _, e := range g.Edges {
		if e.Source == n {
			out = append(out, e.Dependent)
		}
	}
	return out
}

// Find returns the first node with the given kind and name.
func (g *Graph) Find(kind property.NodeKind, name string) (property.Node, bool) {
	for _, n := range g.Nodes {
		if n.Kind == kind && n.Name == name {
			return n, true
		}
	}
	return property.Node{}, false
}
