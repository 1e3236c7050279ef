// Package query runs read-only analyses over a built dependency graph.
package query

import (
	"sort"
	"time"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/bayleafwalker/depgraph/internal/graph"
)

// TransitiveDependencies returns n followed by every node reachable from it,
// in breadth-first order. Order within one depth is unspecified.
func TransitiveDependencies(g *graph.Graph, n *graph.Node) []*graph.Node {
	var out []*graph.Node
	bf := traverse.BreadthFirst{
		Visit: func(v gonum.Node) {
			out = append(out, v.(*graph.Node))
		},
	}
	bf.Walk(g.Directed(), n, nil)
	return out
}

// TransitiveDependents returns n followed by every node that depends on it,
// directly or not, in breadth-first order.
func TransitiveDependents(g *graph.Graph, n *graph.Node) []*graph.Node {
	seen := map[int64]bool{n.ID(): true}
	out := []*graph.Node{n}
	for i := 0; i < len(out); i++ {
		for _, dependent := range g.To(out[i]) {
			if seen[dependent.ID()] {
				continue
			}
			seen[dependent.ID()] = true
			out = append(out, dependent)
		}
	}
	return out
}

// InInterval reports whether t lies in [begin, end].
func InInterval(t, begin, end time.Time) bool {
	return !t.Before(begin) && !t.After(end)
}

// InWindow returns the subgraph of nodes published within [begin, end].
// Nodes whose timestamp is not RFC 3339 are left out. g is not modified.
func InWindow(g *graph.Graph, begin, end time.Time) *graph.Graph {
	return g.Subgraph(func(n *graph.Node) bool {
		published, err := time.Parse(time.RFC3339, n.Timestamp)
		if err != nil {
			return false
		}
		return InInterval(published, begin, end)
	})
}

// Rank is the score of one node.
type Rank struct {
	Node  *graph.Node
	Score float64
}

// PackageRank is the summed score of every version of one package.
type PackageRank struct {
	Name  string
	Score float64
}

// PageRank scores every node; the most depended upon come first.
// Ties are broken by node key.
func PageRank(g *graph.Graph, damping, tolerance float64) []Rank {
	return ranked(g, network.PageRankSparse(g.Directed(), damping, tolerance))
}

// Betweenness scores every node by how many shortest dependency paths run
// through it, highest first.
func Betweenness(g *graph.Graph) []Rank {
	scores := network.Betweenness(g.Directed())
	// Nodes on no shortest path are absent from the result.
	for _, n := range g.Nodes() {
		if _, ok := scores[n.ID()]; !ok {
			scores[n.ID()] = 0
		}
	}
	return ranked(g, scores)
}

func ranked(g *graph.Graph, scores map[int64]float64) []Rank {
	out := make([]Rank, 0, len(scores))
	for id, score := range scores {
		out = append(out, Rank{Node: g.NodeByID(id), Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Node.Key() < out[j].Node.Key()
	})
	return out
}

// AggregateByPackage sums node ranks per package name, highest first.
func AggregateByPackage(ranks []Rank) []PackageRank {
	sums := make(map[string]float64)
	for _, r := range ranks {
		sums[r.Node.Name] += r.Score
	}
	out := make([]PackageRank, 0, len(sums))
	for name, score := range sums {
		out = append(out, PackageRank{Name: name, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}
