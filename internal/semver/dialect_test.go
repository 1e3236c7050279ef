package semver

import (
	"errors"
	"testing"
)

func TestTranslateMaven(t *testing.T) {
	cases := map[string]string{
		"1.0":                    "1.0",
		"[1.0]":                  "=1.0",
		"[1.0,2.0)":              ">=1.0, <2.0",
		"(1.0,2.0]":              ">1.0, <=2.0",
		"(,1.0]":                 "<=1.0",
		"[1.5,)":                 ">=1.5",
		"[1.0,2.0), [3.0,4.0)":   ">=1.0, <2.0 || >=3.0, <4.0",
		" [ 1.2.3 , 1.3.0 ) ":    ">=1.2.3, <1.3.0",
		"(,1.0],[1.2,)":          "<=1.0 || >=1.2",
	}
	for raw, want := range cases {
		got, err := TranslateMaven(raw)
		if err != nil {
			t.Fatalf("TranslateMaven(%q) error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("TranslateMaven(%q) = %q, want %q", raw, got, want)
		}
		if _, err := ParseConstraint(got); err != nil {
			t.Fatalf("translated %q does not parse: %v", got, err)
		}
	}
}

func TestTranslateMaven_Invalid(t *testing.T) {
	for _, raw := range []string{"", "[1.0", "(1.0)", "[,]", "[1,2,3]", "[1,2),", "1.0)"} {
		if _, err := TranslateMaven(raw); !errors.Is(err, ErrInvalidConstraint) {
			t.Fatalf("expected ErrInvalidConstraint for %q, got %v", raw, err)
		}
	}
}

func TestParseDialect(t *testing.T) {
	if d, err := ParseDialect(""); err != nil || d != DialectNPM {
		t.Fatalf("expected default npm dialect, got %q %v", d, err)
	}
	if d, err := ParseDialect("Maven"); err != nil || d != DialectMaven {
		t.Fatalf("expected maven dialect, got %q %v", d, err)
	}
	if _, err := ParseDialect("gradle"); err == nil {
		t.Fatalf("expected error for unknown dialect")
	}
}

func TestCache_MemoizesFailures(t *testing.T) {
	c := NewCache(DialectNPM, false)

	if _, err := c.Constraint("not-a-valid-range"); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := c.Constraint("not-a-valid-range"); err == nil {
		t.Fatalf("expected cached parse error")
	}
	if _, err := c.Version("1.0.0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Version("1.0.0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	constraints, versions := c.Len()
	if constraints != 1 || versions != 1 {
		t.Fatalf("expected 1 cached constraint and version, got %d and %d", constraints, versions)
	}
}

func TestCache_MavenStrict(t *testing.T) {
	c := NewCache(DialectMaven, true)

	con, err := c.Constraint("[1.0.0,2.0.0)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := c.Version("1.4.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Satisfies(v, con) {
		t.Fatalf("expected 1.4.0 to satisfy [1.0.0,2.0.0)")
	}
	if _, err := c.Version("1.4"); err == nil {
		t.Fatalf("expected strict cache to reject 1.4")
	}
}
