package v1alpha1

// NOTE: These types mirror the snapshot file layout one-to-one.
// The graph builder consumes them read-only.

// PackageRecord is one package of a registry snapshot with every published version.
type PackageRecord struct {
	Name     string                   `json:"name"`
	Versions map[string]VersionRecord `json:"versions,omitempty"`
}

// VersionRecord holds the dependency declarations of one published version.
//
// Timestamp is opaque to the builder and copied onto the node as-is.
type VersionRecord struct {
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
	Timestamp       string            `json:"timestamp,omitempty"`
}

// Declarations returns the dependency declarations to match.
//
// When includeDev is set, dev dependencies are merged in; a regular dependency
// on the same package name takes precedence.
func (r VersionRecord) Declarations(includeDev bool) map[string]string {
	if !includeDev || len(r.DevDependencies) == 0 {
		return r.Dependencies
	}
	out := make(map[string]string, len(r.Dependencies)+len(r.DevDependencies))
	for name, constraint := range r.DevDependencies {
		out[name] = constraint
	}
	for name, constraint := range r.Dependencies {
		out[name] = constraint
	}
	return out
}
