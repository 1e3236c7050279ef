package query

import (
	"time"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/bayleafwalker/depgraph/internal/graph"
	"github.com/bayleafwalker/depgraph/internal/semver"
)

// LatestTransitiveDependencies returns n followed by the most recently
// published version of every package reachable from n. Equal timestamps fall
// back to semantic version order. Reachable nodes without an RFC 3339
// timestamp are ignored, and so is n's own package. Packages follow n in
// name order.
func LatestTransitiveDependencies(g *graph.Graph, n *graph.Node) []*graph.Node {
	type candidate struct {
		node      *graph.Node
		published time.Time
	}

	latest := make(map[string]candidate)
	for _, dep := range TransitiveDependencies(g, n)[1:] {
		if dep.Name == n.Name {
			continue
		}
		published, err := time.Parse(time.RFC3339, dep.Timestamp)
		if err != nil {
			continue
		}
		cur, ok := latest[dep.Name]
		if !ok {
			latest[dep.Name] = candidate{dep, published}
			continue
		}
		if published.After(cur.published) || (published.Equal(cur.published) && newer(dep.Version, cur.node.Version)) {
			latest[dep.Name] = candidate{dep, published}
		}
	}

	out := []*graph.Node{n}
	for _, name := range sets.List(sets.KeySet(latest)) {
		out = append(out, latest[name].node)
	}
	return out
}

// newer reports whether a is a greater version than b. Unparseable versions
// never win.
func newer(a, b string) bool {
	va, err := semver.ParseVersion(a)
	if err != nil {
		return false
	}
	vb, err := semver.ParseVersion(b)
	if err != nil {
		return true
	}
	return semver.Compare(va, vb) > 0
}
