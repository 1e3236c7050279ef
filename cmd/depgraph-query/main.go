package main

import (
	"context"
	"flag"
	"os"

	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/bayleafwalker/depgraph/internal/config"
)

var setupLog = log.Log.WithName("query")

func main() {
	var cfg config.Config
	cfg.BindFlags(flag.CommandLine)
	var q queryFlags
	q.bindFlags(flag.CommandLine)

	opts := zap.Options{Development: true}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	log.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	if err := cfg.Validate(); err != nil {
		setupLog.Error(err, "invalid configuration")
		os.Exit(1)
	}
	req, err := q.request(&cfg)
	if err != nil {
		setupLog.Error(err, "invalid query")
		os.Exit(1)
	}

	ctx := log.IntoContext(context.Background(), log.Log)
	if err := run(ctx, &cfg, req, os.Stdout); err != nil {
		setupLog.Error(err, "query failed")
		os.Exit(1)
	}
}
