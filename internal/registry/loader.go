// Package registry loads registry snapshots from disk.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"sigs.k8s.io/controller-runtime/pkg/log"

	registryv1alpha1 "github.com/bayleafwalker/depgraph/api/v1alpha1"
)

// ErrInvalidSnapshot is wrapped by every error caused by the snapshot content.
var ErrInvalidSnapshot = errors.New("invalid registry snapshot")

const readBufferSize = 64 * 1024

// Load reads the snapshot at path. A path of "-" reads standard input.
//
// Any IO error or shape violation is fatal; there is no partial result.
func Load(ctx context.Context, path string) ([]registryv1alpha1.PackageRecord, error) {
	logger := log.FromContext(ctx).WithValues("path", path)

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open snapshot: %w", err)
		}
		defer f.Close()
		r = f
	}

	records, err := Decode(r)
	if err != nil {
		return nil, err
	}
	logger.Info("snapshot loaded", "packages", len(records))
	return records, nil
}

// Decode reads a JSON array of package records from r, one record at a time,
// and validates the result.
func Decode(r io.Reader) ([]registryv1alpha1.PackageRecord, error) {
	iter := jsoniter.Parse(jsoniter.ConfigCompatibleWithStandardLibrary, r, readBufferSize)
	if next := iter.WhatIsNext(); next != jsoniter.ArrayValue {
		if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, iter.Error)
		}
		return nil, fmt.Errorf("%w: top-level value must be an array of packages", ErrInvalidSnapshot)
	}

	records := make([]registryv1alpha1.PackageRecord, 0)
	iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
		var record registryv1alpha1.PackageRecord
		it.ReadVal(&record)
		if it.Error != nil {
			it.Error = fmt.Errorf("package %d: %w", len(records), it.Error)
			return false
		}
		records = append(records, record)
		return true
	})
	if iter.Error != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, iter.Error)
	}
	// Only end of input may follow the array.
	if next := iter.WhatIsNext(); next != jsoniter.InvalidValue || !errors.Is(iter.Error, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after the package array", ErrInvalidSnapshot)
	}

	if errs := Validate(records); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, errs.ToAggregate())
	}
	return records, nil
}

// Validate checks the fields the graph builder relies on.
//
// Version keys are not checked: a malformed version still becomes a node and is
// only skipped as a match candidate.
func Validate(records []registryv1alpha1.PackageRecord) field.ErrorList {
	var errs field.ErrorList
	root := field.NewPath("packages")
	for i, record := range records {
		if strings.TrimSpace(record.Name) == "" {
			errs = append(errs, field.Required(root.Index(i).Child("name"), "package name must not be empty"))
		}
	}
	return errs
}
