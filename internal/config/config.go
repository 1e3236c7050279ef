// Package config holds the command line configuration of the graph builder.
package config

import (
	"flag"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/bayleafwalker/depgraph/internal/graph"
	"github.com/bayleafwalker/depgraph/internal/semver"
)

// DefaultProgressEvery is the progress log interval, in packages.
const DefaultProgressEvery = 10000

// Config holds everything a build run needs.
type Config struct {
	InputPath     string
	OutputPath    string
	OutputFormat  string
	MetricsFile   string
	ProgressEvery int
	Dialect       string
	Strict        bool
	IncludeDev    bool
}

// BindFlags registers the configuration flags on fs.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.InputPath, "input", "", "Path to the registry snapshot JSON file, or - for stdin.")
	fs.StringVar(&c.OutputPath, "output", "", "Optional path to write the graph to, or - for stdout. Nothing is written when empty.")
	fs.StringVar(&c.OutputFormat, "output-format", string(graph.FormatDOT), "Graph output format: 'dot' or 'json'.")
	fs.StringVar(&c.MetricsFile, "metrics-file", "", "Optional path to write build metrics in Prometheus text format.")
	fs.IntVar(&c.ProgressEvery, "progress-every", DefaultProgressEvery, "Log progress every N packages. 0 only logs completion.")
	fs.StringVar(&c.Dialect, "dialect", string(semver.DialectNPM), "Dependency range syntax: 'npm' or 'maven'.")
	fs.BoolVar(&c.Strict, "strict-versions", false, "Only accept full MAJOR.MINOR.PATCH candidate versions.")
	fs.BoolVar(&c.IncludeDev, "include-dev", false, "Also create edges for devDependencies.")
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs field.ErrorList
	if c.InputPath == "" {
		errs = append(errs, field.Required(field.NewPath("input"), "a snapshot path is required"))
	}
	if _, err := graph.ParseFormat(c.OutputFormat); err != nil {
		errs = append(errs, field.NotSupported(field.NewPath("output-format"), c.OutputFormat, []string{string(graph.FormatDOT), string(graph.FormatJSON)}))
	}
	if _, err := semver.ParseDialect(c.Dialect); err != nil {
		errs = append(errs, field.NotSupported(field.NewPath("dialect"), c.Dialect, []string{string(semver.DialectNPM), string(semver.DialectMaven)}))
	}
	if c.ProgressEvery < 0 {
		errs = append(errs, field.Invalid(field.NewPath("progress-every"), c.ProgressEvery, "must not be negative"))
	}
	return errs.ToAggregate()
}

// BuilderOptions translates the configuration into graph builder options.
// Validate must have succeeded.
func (c *Config) BuilderOptions() []graph.Option {
	dialect, _ := semver.ParseDialect(c.Dialect)
	return []graph.Option{
		graph.WithDialect(dialect),
		graph.WithStrictVersions(c.Strict),
		graph.WithDevDependencies(c.IncludeDev),
	}
}

// Format returns the parsed output format. Validate must have succeeded.
func (c *Config) Format() graph.Format {
	f, _ := graph.ParseFormat(c.OutputFormat)
	return f
}
