package registry

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	jsoniter "github.com/json-iterator/go"

	registryv1alpha1 "github.com/bayleafwalker/depgraph/api/v1alpha1"
)

// SyntheticOptions shapes a generated snapshot.
type SyntheticOptions struct {
	Packages int
	// Versions per package.
	Versions int
	// Dependencies declared by each version, at most Packages-1.
	Dependencies int
	// InvalidRatio is the share of declarations given an unparseable range.
	InvalidRatio float64
	Seed         int64
}

var syntheticEpoch = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

// Synthetic generates a snapshot of pkg-0 .. pkg-N. The same options always
// produce the same snapshot.
func Synthetic(opts SyntheticOptions) []registryv1alpha1.PackageRecord {
	rng := rand.New(rand.NewSource(opts.Seed))
	deps := max(min(opts.Dependencies, opts.Packages-1), 0)

	records := make([]registryv1alpha1.PackageRecord, 0, opts.Packages)
	for p := 0; p < opts.Packages; p++ {
		record := registryv1alpha1.PackageRecord{
			Name:     syntheticName(p),
			Versions: make(map[string]registryv1alpha1.VersionRecord, opts.Versions),
		}
		for v := 0; v < opts.Versions; v++ {
			declared := make(map[string]string, deps)
			for len(declared) < deps {
				target := rng.Intn(opts.Packages)
				if target == p {
					continue
				}
				declared[syntheticName(target)] = syntheticRange(rng, opts)
			}
			published := syntheticEpoch.Add(time.Duration(p*opts.Versions+v) * time.Hour)
			record.Versions[syntheticVersion(v)] = registryv1alpha1.VersionRecord{
				Dependencies: declared,
				Timestamp:    published.Format(time.RFC3339),
			}
		}
		records = append(records, record)
	}
	return records
}

func syntheticName(i int) string {
	return fmt.Sprintf("pkg-%d", i)
}

// syntheticVersion spreads versions over majors and minors so caret and tilde
// ranges match a subset.
func syntheticVersion(i int) string {
	return fmt.Sprintf("%d.%d.%d", i/16, (i/4)%4, i%4)
}

func syntheticRange(rng *rand.Rand, opts SyntheticOptions) string {
	if rng.Float64() < opts.InvalidRatio {
		return "not-a-valid-range"
	}
	v := syntheticVersion(rng.Intn(max(opts.Versions, 1)))
	switch rng.Intn(5) {
	case 0:
		return "^" + v
	case 1:
		return "~" + v
	case 2:
		return ">=" + v
	case 3:
		return v
	default:
		return "*"
	}
}

// Encode writes records as a snapshot document that Decode accepts.
func Encode(w io.Writer, records []registryv1alpha1.PackageRecord) error {
	stream := jsoniter.ConfigCompatibleWithStandardLibrary.BorrowStream(w)
	defer jsoniter.ConfigCompatibleWithStandardLibrary.ReturnStream(stream)

	stream.WriteArrayStart()
	for i := range records {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteVal(records[i])
		if stream.Buffered() > readBufferSize {
			if err := stream.Flush(); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
		}
	}
	stream.WriteArrayEnd()
	if stream.Error != nil {
		return fmt.Errorf("encode snapshot: %w", stream.Error)
	}
	if err := stream.Flush(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
