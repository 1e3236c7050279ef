// Package graph materializes a registry snapshot as a directed dependency graph.
//
// There is one node per (package, version) pair and one edge from a dependent
// version to every published dependency version that satisfies the declared
// range. Graphs are built by Builder and are read-only afterwards.
package graph

import (
	"fmt"
	"maps"
	"sort"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/simple"
)

// Key returns the canonical node identifier "{name}-{version}".
func Key(name, version string) string {
	return fmt.Sprintf("%s-%s", name, version)
}

// Node is a single published package version. Nodes are immutable.
type Node struct {
	id int64

	Name      string
	Version   string
	Timestamp string
}

func (n *Node) ID() int64 { return n.id }

// Key returns the canonical identifier of the node.
func (n *Node) Key() string { return Key(n.Name, n.Version) }

func (n *Node) String() string { return n.Key() }

// DOTID names the node in DOT output.
func (n *Node) DOTID() string { return n.Key() }

// Attributes carries the publish timestamp into DOT output.
func (n *Node) Attributes() []encoding.Attribute {
	if n.Timestamp == "" {
		return nil
	}
	return []encoding.Attribute{{Key: "timestamp", Value: n.Timestamp}}
}

// EdgeKey is an edge expressed as a pair of node identifiers.
type EdgeKey struct {
	From string
	To   string
}

// pair is the identity of a node. The string Key is ambiguous when names or
// versions contain '-', so lookups during a build go through pair.
type pair struct {
	name    string
	version string
}

// Graph is the dependency graph of one snapshot.
type Graph struct {
	g     *simple.DirectedGraph
	nodes map[pair]*Node
	byKey map[string]*Node

	diagnostics Diagnostics
}

func newGraph() *Graph {
	return &Graph{
		g:     simple.NewDirectedGraph(),
		nodes: make(map[pair]*Node),
		byKey: make(map[string]*Node),
	}
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return g.g.Edges().Len()
}

// Node returns the node for name at version.
func (g *Graph) Node(name, version string) (*Node, bool) {
	n, ok := g.nodes[pair{name, version}]
	return n, ok
}

// NodeByKey returns the node registered under a "{name}-{version}" identifier.
// When two nodes share an identifier the first one built is returned.
func (g *Graph) NodeByKey(key string) (*Node, bool) {
	n, ok := g.byKey[key]
	return n, ok
}

// NodeByID returns the node with the given gonum id, or nil.
func (g *Graph) NodeByID(id int64) *Node {
	n, _ := g.g.Node(id).(*Node)
	return n
}

// Nodes returns every node ordered by id, which is build order.
func (g *Graph) Nodes() []*Node {
	return g.collect(g.g.Nodes())
}

// From returns the dependencies of n.
func (g *Graph) From(n *Node) []*Node {
	return g.collect(g.g.From(n.ID()))
}

// To returns the dependents of n.
func (g *Graph) To(n *Node) []*Node {
	return g.collect(g.g.To(n.ID()))
}

// HasEdge reports whether from depends on to.
func (g *Graph) HasEdge(from, to *Node) bool {
	return g.g.HasEdgeFromTo(from.ID(), to.ID())
}

// Edges returns every edge sorted by (From, To).
func (g *Graph) Edges() []EdgeKey {
	it := g.g.Edges()
	out := make([]EdgeKey, 0, it.Len())
	for it.Next() {
		e := it.Edge()
		out = append(out, EdgeKey{
			From: e.From().(*Node).Key(),
			To:   e.To().(*Node).Key(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// Directed exposes the graph to gonum algorithms. Callers must not mutate it.
func (g *Graph) Directed() gonum.Directed {
	return g.g
}

// Diagnostics returns what the builder skipped while constructing the graph.
func (g *Graph) Diagnostics() Diagnostics {
	return g.diagnostics
}

// Subgraph returns a new graph holding the nodes accepted by keep and the edges
// between them. Node ids and the build diagnostics are preserved; g is not
// modified.
func (g *Graph) Subgraph(keep func(*Node) bool) *Graph {
	out := newGraph()
	out.diagnostics = g.diagnostics
	out.diagnostics.Skipped = maps.Clone(g.diagnostics.Skipped)
	for _, n := range g.Nodes() {
		if !keep(n) {
			continue
		}
		out.add(n)
	}
	it := g.g.Edges()
	for it.Next() {
		e := it.Edge()
		if out.g.Node(e.From().ID()) == nil || out.g.Node(e.To().ID()) == nil {
			continue
		}
		out.g.SetEdge(out.g.NewEdge(e.From(), e.To()))
	}
	return out
}

func (g *Graph) add(n *Node) {
	g.g.AddNode(n)
	g.nodes[pair{n.Name, n.Version}] = n
	if _, taken := g.byKey[n.Key()]; !taken {
		g.byKey[n.Key()] = n
	}
}

func (g *Graph) collect(it gonum.Nodes) []*Node {
	out := make([]*Node, 0, it.Len())
	for it.Next() {
		out = append(out, it.Node().(*Node))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
