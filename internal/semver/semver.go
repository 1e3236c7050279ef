package semver

import (
	"errors"
	"fmt"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

var (
	// ErrInvalidVersion is wrapped by every version parse failure.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrInvalidConstraint is wrapped by every range expression parse failure.
	ErrInvalidConstraint = errors.New("invalid version constraint")
)

// Version is a semantic version.
//
// This is a thin wrapper around github.com/Masterminds/semver/v3.
type Version struct {
	v *mm.Version
}

// Constraint is a semantic version constraint.
//
// Examples:
// - ">=1.2.0 <2.0.0"
// - "^1.0.0"
// - "~1.4"
// - "1.x || >=3.0.0-beta.1"
//
// Pre-releases follow the Masterminds default: a constraint without a
// pre-release part never matches a pre-release version.
type Constraint struct {
	c *mm.Constraints
}

// ParseVersion parses raw leniently ("1.2" and "v1.2.3" are accepted).
func ParseVersion(raw string) (Version, error) {
	v, err := mm.NewVersion(raw)
	if err != nil {
		return Version{}, fmt.Errorf("semver: parse version %q: %w: %w", raw, ErrInvalidVersion, err)
	}
	return Version{v: v}, nil
}

// ParseStrictVersion only accepts full MAJOR.MINOR.PATCH versions.
func ParseStrictVersion(raw string) (Version, error) {
	v, err := mm.StrictNewVersion(raw)
	if err != nil {
		return Version{}, fmt.Errorf("semver: parse strict version %q: %w: %w", raw, ErrInvalidVersion, err)
	}
	return Version{v: v}, nil
}

func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func ParseConstraint(raw string) (Constraint, error) {
	if strings.TrimSpace(raw) == "" {
		return Constraint{}, fmt.Errorf("semver: parse constraint %q: %w: empty expression", raw, ErrInvalidConstraint)
	}
	c, err := mm.NewConstraint(raw)
	if err != nil {
		return Constraint{}, fmt.Errorf("semver: parse constraint %q: %w: %w", raw, ErrInvalidConstraint, err)
	}
	return Constraint{c: c}, nil
}

func MustParseConstraint(raw string) Constraint {
	c, err := ParseConstraint(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the version as it was written in the input.
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.Original()
}

func (c Constraint) String() string {
	if c.c == nil {
		return ""
	}
	return c.c.String()
}

func Satisfies(v Version, c Constraint) bool {
	if v.v == nil || c.c == nil {
		return false
	}
	return c.c.Check(v.v)
}

// Compare compares a and b, returning:
// -1 if a < b
//
//	0 if a == b
//	1 if a > b
func Compare(a, b Version) int {
	if a.v == nil && b.v == nil {
		return 0
	}
	if a.v == nil {
		return -1
	}
	if b.v == nil {
		return 1
	}
	return a.v.Compare(b.v)
}

// MaxSatisfying returns the highest version in candidates that satisfies c.
//
// If multiple versions are equal, the first encountered wins.
func MaxSatisfying(c Constraint, candidates []Version) (Version, bool) {
	var best Version
	found := false
	for _, candidate := range candidates {
		if !Satisfies(candidate, c) {
			continue
		}
		if !found || Compare(candidate, best) > 0 {
			best = candidate
			found = true
		}
	}
	return best, found
}
