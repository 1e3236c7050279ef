package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/bayleafwalker/depgraph/internal/config"
	"github.com/bayleafwalker/depgraph/internal/graph"
	"github.com/bayleafwalker/depgraph/internal/query"
	"github.com/bayleafwalker/depgraph/internal/registry"
)

const (
	rankPageRank    = "pagerank"
	rankBetweenness = "betweenness"

	dayLayout = "02-01-2006"

	pageRankDamping   = 0.85
	pageRankTolerance = 0.001
)

var errNodeNotFound = errors.New("node not found")

type queryFlags struct {
	node       string
	latest     bool
	dependents bool
	rank       string
	top        int
	from       string
	to         string
}

func (q *queryFlags) bindFlags(fs *flag.FlagSet) {
	fs.StringVar(&q.node, "node", "", "Node to start from, as name@version.")
	fs.BoolVar(&q.latest, "latest", false, "With --node, keep only the most recently published version of each dependency.")
	fs.BoolVar(&q.dependents, "dependents", false, "With --node, list the nodes that depend on it instead of its dependencies.")
	fs.StringVar(&q.rank, "rank", rankPageRank, "Ranking used when no --node is given: 'pagerank' or 'betweenness'.")
	fs.IntVar(&q.top, "top", 10, "Number of ranked nodes and packages to print.")
	fs.StringVar(&q.from, "from", "", "Only keep nodes published on or after this date (DD-MM-YYYY or RFC 3339).")
	fs.StringVar(&q.to, "to", "", "Only keep nodes published on or before this date (DD-MM-YYYY or RFC 3339).")
}

type request struct {
	name, version string
	latest        bool
	dependents    bool
	rank          string
	top           int
	window        bool
	begin, end    time.Time
}

// request validates the flags and reports every problem at once. Standard
// output carries the query result, so the graph cannot be written there too.
func (q *queryFlags) request(cfg *config.Config) (request, error) {
	req := request{latest: q.latest, dependents: q.dependents, rank: q.rank, top: q.top}
	var errs field.ErrorList

	if cfg.OutputPath == "-" {
		errs = append(errs, field.Forbidden(field.NewPath("output"), "standard output is used for the query result; write the graph to a file"))
	}

	if q.node != "" {
		name, version, err := parseNodeRef(q.node)
		if err != nil {
			errs = append(errs, field.Invalid(field.NewPath("node"), q.node, err.Error()))
		}
		req.name, req.version = name, version
	} else if q.latest || q.dependents {
		errs = append(errs, field.Required(field.NewPath("node"), "--latest and --dependents need a node"))
	}
	if q.latest && q.dependents {
		errs = append(errs, field.Forbidden(field.NewPath("latest"), "cannot be combined with --dependents"))
	}
	if q.rank != rankPageRank && q.rank != rankBetweenness {
		errs = append(errs, field.NotSupported(field.NewPath("rank"), q.rank, []string{rankPageRank, rankBetweenness}))
	}
	if q.top <= 0 {
		errs = append(errs, field.Invalid(field.NewPath("top"), q.top, "must be greater than 0"))
	}

	if q.from != "" || q.to != "" {
		req.window = true
		req.end = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
		if q.from != "" {
			begin, err := parseDate(q.from, false)
			if err != nil {
				errs = append(errs, field.Invalid(field.NewPath("from"), q.from, err.Error()))
			}
			req.begin = begin
		}
		if q.to != "" {
			end, err := parseDate(q.to, true)
			if err != nil {
				errs = append(errs, field.Invalid(field.NewPath("to"), q.to, err.Error()))
			}
			req.end = end
		}
		if len(errs) == 0 && req.end.Before(req.begin) {
			errs = append(errs, field.Invalid(field.NewPath("to"), q.to, "must not be before --from"))
		}
	}

	return req, errs.ToAggregate()
}

// parseNodeRef splits name@version at the last '@' so scoped names like
// @scope/pkg@1.0.0 survive.
func parseNodeRef(ref string) (string, string, error) {
	i := strings.LastIndex(ref, "@")
	if i <= 0 || i == len(ref)-1 {
		return "", "", errors.New("expected name@version")
	}
	return ref[:i], ref[i+1:], nil
}

// parseDate accepts DD-MM-YYYY or RFC 3339. A bare day used as an upper
// bound covers the whole day.
func parseDate(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(dayLayout, raw); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New("expected DD-MM-YYYY or RFC 3339")
	}
	return t, nil
}

type rankEntry struct {
	Node  graph.JSONNode `json:"node"`
	Score float64        `json:"score"`
}

type packageEntry struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type result struct {
	Nodes    []graph.JSONNode `json:"nodes,omitempty"`
	Ranks    []rankEntry      `json:"ranks,omitempty"`
	Packages []packageEntry   `json:"packages,omitempty"`
}

func run(ctx context.Context, cfg *config.Config, req request, w io.Writer) error {
	logger := log.FromContext(ctx)

	records, err := registry.Load(ctx, cfg.InputPath)
	if err != nil {
		return err
	}
	g, err := graph.NewBuilder(cfg.BuilderOptions()...).Build(ctx, records)
	if err != nil {
		return err
	}
	if req.window {
		g = query.InWindow(g, req.begin, req.end)
		logger.Info("window applied", "begin", req.begin, "end", req.end, "nodes", g.Len(), "edges", g.EdgeCount())
	}

	if cfg.OutputPath != "" {
		if err := graph.WriteFile(cfg.OutputPath, g, cfg.Format()); err != nil {
			return err
		}
	}

	res, err := answer(g, req)
	if err != nil {
		return err
	}
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func answer(g *graph.Graph, req request) (result, error) {
	var res result
	if req.name != "" {
		n, ok := g.Node(req.name, req.version)
		if !ok {
			return res, fmt.Errorf("%s@%s: %w", req.name, req.version, errNodeNotFound)
		}
		var nodes []*graph.Node
		switch {
		case req.dependents:
			nodes = query.TransitiveDependents(g, n)
		case req.latest:
			nodes = query.LatestTransitiveDependencies(g, n)
		default:
			nodes = query.TransitiveDependencies(g, n)
		}
		for _, d := range nodes {
			res.Nodes = append(res.Nodes, graph.ToJSONNode(d))
		}
		return res, nil
	}

	var ranks []query.Rank
	if req.rank == rankBetweenness {
		ranks = query.Betweenness(g)
	} else {
		ranks = query.PageRank(g, pageRankDamping, pageRankTolerance)
	}
	for i, r := range ranks {
		if i == req.top {
			break
		}
		res.Ranks = append(res.Ranks, rankEntry{Node: graph.ToJSONNode(r.Node), Score: r.Score})
	}
	for i, p := range query.AggregateByPackage(ranks) {
		if i == req.top {
			break
		}
		res.Packages = append(res.Packages, packageEntry{Name: p.Name, Score: p.Score})
	}
	return res, nil
}
