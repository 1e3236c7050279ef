package main

import (
	"context"
	"flag"
	"os"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/bayleafwalker/depgraph/internal/config"
	"github.com/bayleafwalker/depgraph/internal/graph"
	"github.com/bayleafwalker/depgraph/internal/metrics"
	"github.com/bayleafwalker/depgraph/internal/progress"
	"github.com/bayleafwalker/depgraph/internal/registry"
)

var setupLog = log.Log.WithName("setup")

func main() {
	var cfg config.Config
	cfg.BindFlags(flag.CommandLine)

	opts := zap.Options{Development: true}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	log.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	if err := cfg.Validate(); err != nil {
		setupLog.Error(err, "invalid configuration")
		os.Exit(1)
	}

	ctx := log.IntoContext(context.Background(), log.Log)

	records, err := registry.Load(ctx, cfg.InputPath)
	if err != nil {
		setupLog.Error(err, "unable to load snapshot", "input", cfg.InputPath)
		os.Exit(1)
	}

	builder := graph.NewBuilder(append(cfg.BuilderOptions(),
		graph.WithProgress(progress.NewLogReporter(log.Log.WithName("progress"), cfg.ProgressEvery)),
	)...)

	start := time.Now()
	g, err := builder.Build(ctx, records)
	if err != nil {
		setupLog.Error(err, "unable to build graph")
		os.Exit(1)
	}
	took := time.Since(start)

	recorder := metrics.NewRecorder()
	recorder.Observe(g, took)

	d := g.Diagnostics()
	for _, reason := range d.Reasons() {
		setupLog.Info("skipped", "reason", reason, "count", d.Skipped[reason])
	}

	if cfg.OutputPath != "" {
		if err := graph.WriteFile(cfg.OutputPath, g, cfg.Format()); err != nil {
			setupLog.Error(err, "unable to write graph", "output", cfg.OutputPath)
			os.Exit(1)
		}
		setupLog.Info("graph written", "output", cfg.OutputPath, "format", cfg.Format())
	}

	if cfg.MetricsFile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			setupLog.Error(err, "unable to write metrics", "metrics-file", cfg.MetricsFile)
			os.Exit(1)
		}
	}

	setupLog.Info("done", "nodes", g.Len(), "edges", g.EdgeCount(), "took", took.String())
}
