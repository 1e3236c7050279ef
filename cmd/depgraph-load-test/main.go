package main

import (
	"context"
	"flag"
	"os"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	registryv1alpha1 "github.com/bayleafwalker/depgraph/api/v1alpha1"
	"github.com/bayleafwalker/depgraph/internal/config"
	"github.com/bayleafwalker/depgraph/internal/graph"
	"github.com/bayleafwalker/depgraph/internal/metrics"
	"github.com/bayleafwalker/depgraph/internal/registry"
)

var setupLog = log.Log.WithName("load-test")

func main() {
	var opts registry.SyntheticOptions
	var runs int
	var snapshotOut string
	var metricsFile string
	var dialect string

	flag.IntVar(&opts.Packages, "packages", 10000, "Number of packages to generate")
	flag.IntVar(&opts.Versions, "versions", 10, "Versions per package")
	flag.IntVar(&opts.Dependencies, "dependencies", 5, "Dependencies declared by each version")
	flag.Float64Var(&opts.InvalidRatio, "invalid-ratio", 0.01, "Share of declarations with an unparseable range")
	flag.Int64Var(&opts.Seed, "seed", 1, "Random seed")
	flag.IntVar(&runs, "runs", 3, "Number of concurrent builds over the same snapshot")
	flag.StringVar(&snapshotOut, "snapshot-out", "", "Optional path to write the generated snapshot to")
	flag.StringVar(&metricsFile, "metrics-file", "", "Optional path to write metrics of the last build to")
	flag.StringVar(&dialect, "dialect", "npm", "Dependency range syntax: 'npm' or 'maven'")

	zapOpts := zap.Options{Development: true}
	zapOpts.BindFlags(flag.CommandLine)
	flag.Parse()

	log.SetLogger(zap.New(zap.UseFlagOptions(&zapOpts)))

	cfg := config.Config{InputPath: "-", OutputFormat: string(graph.FormatDOT), Dialect: dialect}
	if err := cfg.Validate(); err != nil {
		setupLog.Error(err, "invalid configuration")
		os.Exit(1)
	}

	if runs < 1 || opts.Packages < 1 || opts.Versions < 1 {
		setupLog.Info("--runs, --packages and --versions must be at least 1")
		os.Exit(1)
	}

	records := registry.Synthetic(opts)
	setupLog.Info("snapshot generated", "packages", opts.Packages, "versions", opts.Versions, "dependencies", opts.Dependencies)

	if snapshotOut != "" {
		if err := writeSnapshot(snapshotOut, records); err != nil {
			setupLog.Error(err, "unable to write snapshot", "path", snapshotOut)
			os.Exit(1)
		}
	}

	// Per-build logs would repeat for every run.
	quiet := log.IntoContext(context.Background(), logr.Discard())
	builder := graph.NewBuilder(cfg.BuilderOptions()...)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var last *graph.Graph
	start := time.Now()
	latencies := make(chan time.Duration, runs)

	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			buildStart := time.Now()
			g, err := builder.Build(quiet, records)
			if err != nil {
				setupLog.Error(err, "build failed", "run", id)
				return
			}
			latency := time.Since(buildStart)
			latencies <- latency
			setupLog.Info("build finished", "run", id, "took", latency.String(), "nodes", g.Len(), "edges", g.EdgeCount())

			mu.Lock()
			last = g
			mu.Unlock()
		}(i)
	}

	wg.Wait()
	close(latencies)
	totalDuration := time.Since(start)

	var totalLatency time.Duration
	count := 0
	for l := range latencies {
		totalLatency += l
		count++
	}
	if count == 0 {
		setupLog.Info("load test completed, no build succeeded", "took", totalDuration.String())
		os.Exit(1)
	}

	avgLatency := totalLatency / time.Duration(count)
	setupLog.Info("load test completed", "took", totalDuration.String(), "builds", count, "avg", avgLatency.String())

	if metricsFile != "" {
		recorder := metrics.NewRecorder()
		recorder.Observe(last, avgLatency)
		if err := recorder.WriteTextfile(metricsFile); err != nil {
			setupLog.Error(err, "unable to write metrics", "metrics-file", metricsFile)
			os.Exit(1)
		}
	}
}

func writeSnapshot(path string, records []registryv1alpha1.PackageRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := registry.Encode(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
