package semver

import (
	"fmt"
	"strings"
)

// Dialect names the range syntax used by a registry snapshot.
type Dialect string

const (
	// DialectNPM is the npm/Cargo style syntax understood natively.
	DialectNPM Dialect = "npm"
	// DialectMaven is the Maven interval syntax, e.g. "[1.0,2.0)".
	DialectMaven Dialect = "maven"
)

func ParseDialect(raw string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(raw))); d {
	case "", DialectNPM:
		return DialectNPM, nil
	case DialectMaven:
		return d, nil
	default:
		return "", fmt.Errorf("semver: unknown dialect %q", raw)
	}
}

// Translate rewrites raw into the native constraint syntax.
func (d Dialect) Translate(raw string) (string, error) {
	if d == DialectMaven {
		return TranslateMaven(raw)
	}
	return raw, nil
}

// TranslateMaven converts a Maven version range into constraint syntax.
//
//	[1.0]            -> =1.0
//	[1.0,2.0)        -> >=1.0, <2.0
//	(,1.0]           -> <=1.0
//	[1.5,)           -> >=1.5
//	[1,2),[3,4)      -> >=1, <2 || >=3, <4
//
// A bare version (Maven's soft requirement) is kept as an exact match.
func TranslateMaven(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("semver: maven range %q: %w: empty expression", raw, ErrInvalidConstraint)
	}
	if s[0] != '[' && s[0] != '(' {
		if strings.ContainsAny(s, "[](),") {
			return "", fmt.Errorf("semver: maven range %q: %w: unbalanced interval", raw, ErrInvalidConstraint)
		}
		return s, nil
	}

	var alternatives []string
	for s != "" {
		open := s[0]
		if open != '[' && open != '(' {
			return "", fmt.Errorf("semver: maven range %q: %w: expected '[' or '('", raw, ErrInvalidConstraint)
		}
		end := strings.IndexAny(s, "])")
		if end < 0 {
			return "", fmt.Errorf("semver: maven range %q: %w: unterminated interval", raw, ErrInvalidConstraint)
		}
		alt, err := mavenInterval(open, s[1:end], s[end])
		if err != nil {
			return "", fmt.Errorf("semver: maven range %q: %w", raw, err)
		}
		alternatives = append(alternatives, alt)

		s = strings.TrimSpace(s[end+1:])
		if strings.HasPrefix(s, ",") {
			s = strings.TrimSpace(s[1:])
			if s == "" {
				return "", fmt.Errorf("semver: maven range %q: %w: trailing comma", raw, ErrInvalidConstraint)
			}
		}
	}
	return strings.Join(alternatives, " || "), nil
}

func mavenInterval(open byte, body string, closing byte) (string, error) {
	parts := strings.Split(body, ",")
	switch len(parts) {
	case 1:
		v := strings.TrimSpace(parts[0])
		if v == "" || open != '[' || closing != ']' {
			return "", fmt.Errorf("%w: single version must be written [x]", ErrInvalidConstraint)
		}
		return "=" + v, nil
	case 2:
		lo, hi := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if lo == "" && hi == "" {
			return "", fmt.Errorf("%w: interval without bounds", ErrInvalidConstraint)
		}
		terms := make([]string, 0, 2)
		if lo != "" {
			op := ">="
			if open == '(' {
				op = ">"
			}
			terms = append(terms, op+lo)
		}
		if hi != "" {
			op := "<"
			if closing == ']' {
				op = "<="
			}
			terms = append(terms, op+hi)
		}
		return strings.Join(terms, ", "), nil
	default:
		return "", fmt.Errorf("%w: too many bounds in %q", ErrInvalidConstraint, body)
	}
}
