// Package versionindex maps package names to the version strings published for them.
package versionindex

import (
	"k8s.io/apimachinery/pkg/util/sets"

	registryv1alpha1 "github.com/bayleafwalker/depgraph/api/v1alpha1"
)

// Index is built once from a full snapshot and is read-only afterwards.
type Index struct {
	versions map[string][]string
}

// Build flattens every record's version keys.
//
// Every package name gets an entry, even with zero versions. Records that share a
// name are merged and each version string is listed once, in sorted order.
func Build(records []registryv1alpha1.PackageRecord) *Index {
	seen := make(map[string]sets.Set[string], len(records))
	for _, record := range records {
		s, ok := seen[record.Name]
		if !ok {
			s = sets.New[string]()
			seen[record.Name] = s
		}
		for version := range record.Versions {
			s.Insert(version)
		}
	}

	idx := &Index{versions: make(map[string][]string, len(seen))}
	for name, s := range seen {
		idx.versions[name] = sets.List(s)
	}
	return idx
}

// Lookup returns the versions of name. Unknown names yield an empty result.
//
// The returned slice is shared; callers must not modify it.
func (i *Index) Lookup(name string) []string {
	return i.versions[name]
}

// Has reports whether name was seen in the snapshot.
func (i *Index) Has(name string) bool {
	_, ok := i.versions[name]
	return ok
}

func (i *Index) Len() int {
	return len(i.versions)
}

// Names returns every package name in sorted order.
func (i *Index) Names() []string {
	return sets.List(sets.KeySet(i.versions))
}
