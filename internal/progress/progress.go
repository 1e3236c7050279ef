// Package progress reports how far the edge pass has come.
//
// Reporters only observe counters; they never see the graph.
package progress

import (
	"github.com/go-logr/logr"
)

// Reporter receives the number of packages processed so far out of total.
type Reporter interface {
	Report(done, total int)
}

// Nop discards every report.
type Nop struct{}

func (Nop) Report(int, int) {}

// LogReporter logs a completion percentage every `every` packages and once
// when the last package is done.
type LogReporter struct {
	log   logr.Logger
	every int
}

// NewLogReporter returns a reporter that logs through logger. An every of zero
// or less only logs completion.
func NewLogReporter(logger logr.Logger, every int) *LogReporter {
	return &LogReporter{log: logger, every: every}
}

func (r *LogReporter) Report(done, total int) {
	if total <= 0 {
		return
	}
	if done != total && (r.every <= 0 || done%r.every != 0) {
		return
	}
	r.log.Info("connecting packages to their dependencies",
		"done", done,
		"total", total,
		"percent", float64(done)/float64(total)*100,
	)
}
