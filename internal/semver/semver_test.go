package semver

import (
	"errors"
	"testing"
)

func TestSatisfies(t *testing.T) {
	c := MustParseConstraint("^1.2.0")

	if !Satisfies(MustParseVersion("1.2.0"), c) {
		t.Fatalf("expected 1.2.0 to satisfy ^1.2.0")
	}
	if !Satisfies(MustParseVersion("1.9.9"), c) {
		t.Fatalf("expected 1.9.9 to satisfy ^1.2.0")
	}
	if Satisfies(MustParseVersion("2.0.0"), c) {
		t.Fatalf("expected 2.0.0 to NOT satisfy ^1.2.0")
	}
}

func TestSatisfies_RangeSyntax(t *testing.T) {
	cases := []struct {
		constraint string
		version    string
		want       bool
	}{
		{"1.2.3", "1.2.3", true},
		{"1.2.3", "1.2.4", false},
		{">=1.0.0 <2.0.0", "1.99.0", true},
		{">=1.0.0, <2.0.0", "2.0.0", false},
		{"~1.4", "1.4.9", true},
		{"~1.4", "1.5.0", false},
		{"1.x", "1.7.0", true},
		{"*", "42.0.0", true},
		{"1.0.0 - 1.5.0", "1.5.0", true},
		{"<1.0.0 || >=3.0.0", "3.1.0", true},
		{"<1.0.0 || >=3.0.0", "2.0.0", false},
		// Pre-releases only match constraints that name one.
		{"^1.2.0", "1.3.0-beta.1", false},
		{">=1.3.0-alpha", "1.3.0-beta.1", true},
		// Build metadata does not take part in matching.
		{"=1.2.3", "1.2.3+build.7", true},
	}

	for _, tc := range cases {
		c := MustParseConstraint(tc.constraint)
		v := MustParseVersion(tc.version)
		if got := Satisfies(v, c); got != tc.want {
			t.Fatalf("Satisfies(%q, %q) = %v, want %v", tc.version, tc.constraint, got, tc.want)
		}
	}
}

func TestParseConstraint_Invalid(t *testing.T) {
	for _, raw := range []string{"not-a-valid-range", "", ">= banana"} {
		if _, err := ParseConstraint(raw); !errors.Is(err, ErrInvalidConstraint) {
			t.Fatalf("expected ErrInvalidConstraint for %q, got %v", raw, err)
		}
	}
}

func TestParseVersion_LenientAndStrict(t *testing.T) {
	if _, err := ParseVersion("v1.2"); err != nil {
		t.Fatalf("expected lenient parse of v1.2, got %v", err)
	}
	if _, err := ParseStrictVersion("v1.2"); !errors.Is(err, ErrInvalidVersion) {
		t.Fatalf("expected strict parse to reject v1.2, got %v", err)
	}
	if _, err := ParseVersion("banana"); !errors.Is(err, ErrInvalidVersion) {
		t.Fatalf("expected ErrInvalidVersion, got %v", err)
	}
	if got := MustParseVersion("v1.2").String(); got != "v1.2" {
		t.Fatalf("expected original text to be kept, got %q", got)
	}
}

func TestSatisfies_ZeroValues(t *testing.T) {
	if Satisfies(Version{}, MustParseConstraint("*")) {
		t.Fatalf("zero version must not satisfy anything")
	}
	if Satisfies(MustParseVersion("1.0.0"), Constraint{}) {
		t.Fatalf("zero constraint must not be satisfied")
	}
}

func TestMaxSatisfying(t *testing.T) {
	c := MustParseConstraint(">=1.0.0 <2.0.0")
	candidates := []Version{
		MustParseVersion("0.9.0"),
		MustParseVersion("1.0.0"),
		MustParseVersion("1.5.0"),
		MustParseVersion("2.0.0"),
	}

	best, ok := MaxSatisfying(c, candidates)
	if !ok {
		t.Fatalf("expected to find a satisfying version")
	}
	if Compare(best, MustParseVersion("1.5.0")) != 0 {
		t.Fatalf("expected best=1.5.0")
	}
}
