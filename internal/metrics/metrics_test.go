package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"sigs.k8s.io/controller-runtime/pkg/log"

	registryv1alpha1 "github.com/bayleafwalker/depgraph/api/v1alpha1"
	"github.com/bayleafwalker/depgraph/internal/graph"
)

func buildGraph(t *testing.T) *graph.Graph {
	t.Helper()
	ctx := log.IntoContext(context.Background(), logr.Discard())
	g, err := graph.NewBuilder().Build(ctx, []registryv1alpha1.PackageRecord{
		{Name: "A", Versions: map[string]registryv1alpha1.VersionRecord{
			"1.0.0": {Dependencies: map[string]string{"B": "^1.2.0", "C": "*", "D": "not-a-valid-range"}},
		}},
		{Name: "B", Versions: map[string]registryv1alpha1.VersionRecord{"1.2.5": {}, "2.0.0": {}}},
		{Name: "D", Versions: map[string]registryv1alpha1.VersionRecord{"1.0.0": {}}},
	})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	return g
}

func TestRecorder_Observe(t *testing.T) {
	r := NewRecorder()
	r.Observe(buildGraph(t), 250*time.Millisecond)

	if got := testutil.ToFloat64(r.nodes); got != 4 {
		t.Fatalf("expected 4 nodes, got %v", got)
	}
	if got := testutil.ToFloat64(r.edges); got != 1 {
		t.Fatalf("expected 1 edge, got %v", got)
	}
	if got := testutil.ToFloat64(r.declarations); got != 3 {
		t.Fatalf("expected 3 declarations, got %v", got)
	}
	if got := testutil.ToFloat64(r.skipped.WithLabelValues("invalid-range")); got != 1 {
		t.Fatalf("expected 1 invalid-range skip, got %v", got)
	}
	if got := testutil.ToFloat64(r.skipped.WithLabelValues("unknown-package")); got != 1 {
		t.Fatalf("expected 1 unknown-package skip, got %v", got)
	}
	if n := testutil.CollectAndCount(r.buildDuration); n != 1 {
		t.Fatalf("expected the duration histogram to be collected once, got %d", n)
	}
	n, err := testutil.GatherAndCount(r.Gatherer(), "depgraph_skipped_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected a skipped series per reason seen, got %d", n)
	}
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.Observe(buildGraph(t), time.Second)

	path := filepath.Join(t.TempDir(), "depgraph.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile error: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	for _, want := range []string{"depgraph_nodes 4", "depgraph_edges 1", `depgraph_skipped_total{reason="invalid-range"} 1`} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("expected %q in textfile:\n%s", want, b)
		}
	}
}
