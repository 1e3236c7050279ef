package graph

import "sort"

// SkipReason says why a dependency declaration or a single candidate version
// did not produce an edge.
type SkipReason string

const (
	// SkipInvalidRange drops a whole declaration whose range does not parse.
	SkipInvalidRange SkipReason = "invalid-range"
	// SkipUnknownPackage marks a declaration naming a package absent from the snapshot.
	SkipUnknownPackage SkipReason = "unknown-package"
	// SkipInvalidVersion drops one candidate whose version string does not parse.
	SkipInvalidVersion SkipReason = "invalid-version"
	// SkipUnresolved drops a matching candidate without a node.
	SkipUnresolved SkipReason = "unresolved-node"
	// SkipSelfReference drops a candidate that is the dependent itself.
	SkipSelfReference SkipReason = "self-reference"
	// SkipDuplicateVersion drops a repeated (name, version) pair; the first one is kept.
	SkipDuplicateVersion SkipReason = "duplicate-version"
)

// Diagnostics counts what happened during one build.
//
// Skips never change the outcome of a build; they are only reported.
type Diagnostics struct {
	Packages     int
	Declarations int
	Candidates   int
	Skipped      map[SkipReason]int
}

func (d *Diagnostics) skip(reason SkipReason) {
	if d.Skipped == nil {
		d.Skipped = make(map[SkipReason]int)
	}
	d.Skipped[reason]++
}

// SkippedTotal sums every skip reason.
func (d Diagnostics) SkippedTotal() int {
	total := 0
	for _, n := range d.Skipped {
		total += n
	}
	return total
}

// Reasons returns the skip reasons seen, sorted.
func (d Diagnostics) Reasons() []SkipReason {
	out := make([]SkipReason, 0, len(d.Skipped))
	for r := range d.Skipped {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
