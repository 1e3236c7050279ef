package graph

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/sets"
	"sigs.k8s.io/controller-runtime/pkg/log"

	registryv1alpha1 "github.com/bayleafwalker/depgraph/api/v1alpha1"
	"github.com/bayleafwalker/depgraph/internal/progress"
	"github.com/bayleafwalker/depgraph/internal/semver"
	"github.com/bayleafwalker/depgraph/internal/versionindex"
)

// Builder constructs a Graph from registry records.
//
// A Builder holds options only; every Build call owns its own node map, version
// index and parse cache, so a Builder can be reused.
type Builder struct {
	dialect    semver.Dialect
	strict     bool
	includeDev bool
	progress   progress.Reporter
}

// Option configures a Builder.
type Option func(*Builder)

// WithProgress reports edge pass progress per package.
func WithProgress(r progress.Reporter) Option {
	return func(b *Builder) { b.progress = r }
}

// WithDialect selects the range syntax of dependency declarations.
func WithDialect(d semver.Dialect) Option {
	return func(b *Builder) { b.dialect = d }
}

// WithStrictVersions rejects candidate versions that are not full MAJOR.MINOR.PATCH.
func WithStrictVersions(strict bool) Option {
	return func(b *Builder) { b.strict = strict }
}

// WithDevDependencies also matches devDependencies declarations.
func WithDevDependencies(include bool) Option {
	return func(b *Builder) { b.includeDev = include }
}

// NewBuilder creates a new graph builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		dialect:  semver.DialectNPM,
		progress: progress.Nop{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// build is the state of a single Build call.
type build struct {
	*Builder

	log   logr.Logger
	graph *Graph
	index *versionindex.Index
	cache *semver.Cache

	// owned lists the nodes created from each record, in record order.
	owned [][]*Node
	decls map[int64]map[string]string
}

// Build runs the node pass, builds the version index and then runs the edge pass.
//
// Malformed ranges, malformed versions and dangling references are skipped and
// counted in the graph's Diagnostics; they never fail the build. The only error
// is a record without a name.
func (b *Builder) Build(ctx context.Context, records []registryv1alpha1.PackageRecord) (*Graph, error) {
	for i, record := range records {
		if record.Name == "" {
			return nil, fmt.Errorf("record %d: %w", i, ErrUnnamedPackage)
		}
	}

	s := &build{
		Builder: b,
		log:     log.FromContext(ctx).WithName("graph-builder"),
		graph:   newGraph(),
		cache:   semver.NewCache(b.dialect, b.strict),
		owned:   make([][]*Node, len(records)),
		decls:   make(map[int64]map[string]string),
	}
	s.graph.diagnostics.Packages = len(records)

	s.addNodes(records)
	// The index must be complete before the first edge: a dependency may name a
	// package whose record comes later.
	s.index = versionindex.Build(records)
	s.addEdges()

	d := s.graph.diagnostics
	s.log.Info("graph built",
		"packages", d.Packages,
		"nodes", s.graph.Len(),
		"edges", s.graph.EdgeCount(),
		"declarations", d.Declarations,
		"skipped", d.SkippedTotal(),
	)
	return s.graph, nil
}

func (s *build) addNodes(records []registryv1alpha1.PackageRecord) {
	for i, record := range records {
		for _, version := range sets.List(sets.KeySet(record.Versions)) {
			if _, dup := s.graph.Node(record.Name, version); dup {
				s.graph.diagnostics.skip(SkipDuplicateVersion)
				s.log.Info("duplicate package version in snapshot, keeping the first", "node", Key(record.Name, version))
				continue
			}

			vr := record.Versions[version]
			n := &Node{
				id:        s.graph.g.NewNode().ID(),
				Name:      record.Name,
				Version:   version,
				Timestamp: vr.Timestamp,
			}
			s.graph.add(n)
			s.owned[i] = append(s.owned[i], n)
			s.decls[n.id] = vr.Declarations(s.includeDev)
		}
	}
}

func (s *build) addEdges() {
	total := len(s.owned)
	for i, nodes := range s.owned {
		for _, n := range nodes {
			s.connect(n, s.decls[n.id])
		}
		s.progress.Report(i+1, total)
	}
}

// connect adds the edges of one dependent node.
func (s *build) connect(n *Node, declarations map[string]string) {
	for _, dependency := range sets.List(sets.KeySet(declarations)) {
		raw := declarations[dependency]
		s.graph.diagnostics.Declarations++

		constraint, err := s.cache.Constraint(raw)
		if err != nil {
			s.graph.diagnostics.skip(SkipInvalidRange)
			s.log.V(1).Info("skipping dependency declaration", "node", n.Key(), "dependency", dependency, "range", raw, "reason", err.Error())
			continue
		}
		if !s.index.Has(dependency) {
			s.graph.diagnostics.skip(SkipUnknownPackage)
			s.log.V(2).Info("dependency not in snapshot", "node", n.Key(), "dependency", dependency)
			continue
		}

		for _, candidate := range s.index.Lookup(dependency) {
			res := s.resolveCandidate(n, dependency, candidate, constraint)
			switch {
			case res.skip != "":
				s.graph.diagnostics.skip(res.skip)
			case res.target != nil:
				// At most one edge per (dependent, dependency version): declaration
				// names are unique per node and index versions are unique per package.
				s.graph.g.SetEdge(s.graph.g.NewEdge(n, res.target))
			}
		}
	}
}

// candidateResult is the outcome of testing one candidate version.
//
// Exactly one of the following holds: target is set (add an edge), skip is set
// (the candidate was unusable), or both are empty (the range did not match).
type candidateResult struct {
	target *Node
	skip   SkipReason
}

func (s *build) resolveCandidate(n *Node, dependency, candidate string, constraint semver.Constraint) candidateResult {
	s.graph.diagnostics.Candidates++

	v, err := s.cache.Version(candidate)
	if err != nil {
		return candidateResult{skip: SkipInvalidVersion}
	}
	if !semver.Satisfies(v, constraint) {
		return candidateResult{}
	}
	target, ok := s.graph.Node(dependency, candidate)
	if !ok {
		return candidateResult{skip: SkipUnresolved}
	}
	if target == n {
		return candidateResult{skip: SkipSelfReference}
	}
	return candidateResult{target: target}
}
