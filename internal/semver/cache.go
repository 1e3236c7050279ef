package semver

// Cache memoizes parsed constraints and versions by their raw text.
//
// Failures are cached too, so a malformed string is parsed once per build.
// A Cache is not safe for concurrent use.
type Cache struct {
	dialect Dialect
	strict  bool

	constraints map[string]constraintEntry
	versions    map[string]versionEntry
}

type constraintEntry struct {
	c   Constraint
	err error
}

type versionEntry struct {
	v   Version
	err error
}

// NewCache returns a cache that translates ranges with dialect and, when
// strict is set, parses candidates with ParseStrictVersion.
func NewCache(dialect Dialect, strict bool) *Cache {
	if dialect == "" {
		dialect = DialectNPM
	}
	return &Cache{
		dialect:     dialect,
		strict:      strict,
		constraints: make(map[string]constraintEntry),
		versions:    make(map[string]versionEntry),
	}
}

func (c *Cache) Constraint(raw string) (Constraint, error) {
	if e, ok := c.constraints[raw]; ok {
		return e.c, e.err
	}
	var e constraintEntry
	translated, err := c.dialect.Translate(raw)
	if err != nil {
		e.err = err
	} else {
		e.c, e.err = ParseConstraint(translated)
	}
	c.constraints[raw] = e
	return e.c, e.err
}

func (c *Cache) Version(raw string) (Version, error) {
	if e, ok := c.versions[raw]; ok {
		return e.v, e.err
	}
	var e versionEntry
	if c.strict {
		e.v, e.err = ParseStrictVersion(raw)
	} else {
		e.v, e.err = ParseVersion(raw)
	}
	c.versions[raw] = e
	return e.v, e.err
}

// Len returns the number of distinct constraints and versions seen.
func (c *Cache) Len() (constraints, versions int) {
	return len(c.constraints), len(c.versions)
}
