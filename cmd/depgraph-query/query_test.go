package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	jsoniter "github.com/json-iterator/go"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/bayleafwalker/depgraph/internal/config"
)

const snapshot = `[
  {"name": "@scope/app", "versions": {
    "1.0.0": {"dependencies": {"lib": "^1.0.0"}, "timestamp": "2021-05-01T00:00:00Z"}
  }},
  {"name": "lib", "versions": {
    "1.0.0": {"timestamp": "2020-01-01T00:00:00Z"},
    "1.4.0": {"timestamp": "2020-09-01T00:00:00Z"},
    "2.0.0": {"timestamp": "2021-01-01T00:00:00Z"}
  }}
]`

func TestParseNodeRef(t *testing.T) {
	name, version, err := parseNodeRef("@scope/app@1.0.0")
	if err != nil {
		t.Fatalf("parseNodeRef error: %v", err)
	}
	if name != "@scope/app" || version != "1.0.0" {
		t.Fatalf("unexpected split %q %q", name, version)
	}
	for _, bad := range []string{"app", "app@", "@1.0.0"} {
		if _, _, err := parseNodeRef(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestParseDate(t *testing.T) {
	begin, err := parseDate("05-03-2021", false)
	if err != nil {
		t.Fatalf("parseDate error: %v", err)
	}
	if !begin.Equal(time.Date(2021, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected begin %v", begin)
	}
	end, err := parseDate("05-03-2021", true)
	if err != nil {
		t.Fatalf("parseDate error: %v", err)
	}
	if end.Day() != 5 || end.Hour() != 23 {
		t.Fatalf("expected the end of the day, got %v", end)
	}
	exact, err := parseDate("2021-03-05T10:00:00Z", true)
	if err != nil {
		t.Fatalf("parseDate error: %v", err)
	}
	if exact.Hour() != 10 {
		t.Fatalf("expected RFC 3339 input to be kept as is, got %v", exact)
	}
	if _, err := parseDate("2021/03/05", false); err == nil {
		t.Fatalf("expected an unknown layout to be rejected")
	}
}

func TestRequest_Invalid(t *testing.T) {
	q := queryFlags{latest: true, dependents: true, rank: "degree", top: 0, from: "02-02-2022", to: "01-01-2022"}
	_, err := q.request(&config.Config{})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	for _, want := range []string{"node", "latest", "rank", "top"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in error, got %v", want, err)
		}
	}
}

func TestRequest_ReversedWindow(t *testing.T) {
	q := queryFlags{rank: rankPageRank, top: 3, from: "02-02-2022", to: "01-01-2022"}
	if _, err := q.request(&config.Config{}); err == nil || !strings.Contains(err.Error(), "before --from") {
		t.Fatalf("expected a reversed window to be rejected, got %v", err)
	}
}

func TestRequest_GraphOnStdout(t *testing.T) {
	q := queryFlags{rank: rankPageRank, top: 3}
	_, err := q.request(&config.Config{OutputPath: "-"})
	if err == nil || !strings.Contains(err.Error(), "output") {
		t.Fatalf("expected --output - to be rejected, got %v", err)
	}
	if _, err := q.request(&config.Config{OutputPath: filepath.Join(t.TempDir(), "graph.dot")}); err != nil {
		t.Fatalf("expected a file output to be accepted, got %v", err)
	}
}

func runQuery(t *testing.T, q queryFlags) result {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte(snapshot), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	cfg := &config.Config{InputPath: path, OutputFormat: "dot", Dialect: "npm"}
	req, err := q.request(cfg)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}

	var out bytes.Buffer
	ctx := log.IntoContext(context.Background(), logr.Discard())
	if err := run(ctx, cfg, req, &out); err != nil {
		t.Fatalf("run error: %v", err)
	}
	var res result
	if err := jsoniter.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	return res
}

func ids(res result) []string {
	out := make([]string, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestRun_Dependencies(t *testing.T) {
	res := runQuery(t, queryFlags{node: "@scope/app@1.0.0", rank: rankPageRank, top: 5})
	if got := len(res.Nodes); got != 3 {
		t.Fatalf("expected the app and two lib versions, got %v", ids(res))
	}
	if res.Nodes[0].ID != "@scope/app-1.0.0" {
		t.Fatalf("expected the start node first, got %v", ids(res))
	}
}

func TestRun_Latest(t *testing.T) {
	res := runQuery(t, queryFlags{node: "@scope/app@1.0.0", latest: true, rank: rankPageRank, top: 5})
	got := ids(res)
	if len(got) != 2 || got[1] != "lib-1.4.0" {
		t.Fatalf("expected the newest matching lib only, got %v", got)
	}
}

func TestRun_WindowedRanking(t *testing.T) {
	res := runQuery(t, queryFlags{rank: rankPageRank, top: 1, from: "01-06-2020", to: "31-12-2021"})
	if len(res.Ranks) != 1 || len(res.Packages) != 1 {
		t.Fatalf("expected --top to cap the output, got %+v", res)
	}
	if res.Ranks[0].Node.ID != "lib-1.4.0" {
		t.Fatalf("expected lib-1.4.0 to rank first inside the window, got %s", res.Ranks[0].Node.ID)
	}
}

func TestRun_UnknownNode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte(snapshot), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	cfg := &config.Config{InputPath: path, OutputFormat: "dot", Dialect: "npm"}
	req := request{name: "lib", version: "9.9.9", rank: rankPageRank, top: 1}

	ctx := log.IntoContext(context.Background(), logr.Discard())
	err := run(ctx, cfg, req, &bytes.Buffer{})
	if !errors.Is(err, errNodeNotFound) {
		t.Fatalf("expected errNodeNotFound, got %v", err)
	}
}
