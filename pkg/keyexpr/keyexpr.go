package keyexpr

import (
	"errors"
	"fmt"
	"strings"
)

// Key expression errors.
var (
	ErrEmpty         = errors.New("key expression is empty")
	ErrEmptyChunk    = errors.New("key expression contains an empty chunk")
	ErrLeadingSlash  = errors.New("key expression must not start with '/'")
	ErrTrailingSlash = errors.New("key expression must not end with '/'")
	ErrInvalidChunk  = errors.New("invalid chunk in key expression")
)

// Reserved characters that may not appear in a chunk.
const reservedChars = "#?$"

// KeyExpr is a validated, canonized key expression.
// The zero value is invalid; construct with New or MustNew.
type KeyExpr struct {
	expr string

	// optimized is true when the expression was declared on a session
	// and the engine returned an optimized handle for it.
	optimized bool
}

// New validates and canonizes a key expression.
func New(s string) (KeyExpr, error) {
	canon, err := canonize(s)
	if err != nil {
		return KeyExpr{}, err
	}
	return KeyExpr{expr: canon}, nil
}

// MustNew is like New but panics on invalid input.
// Intended for constant expressions in tests and examples.
func MustNew(s string) KeyExpr {
	k, err := New(s)
	if err != nil {
		panic(err)
	}
	return k
}

// Optimized marks the expression as engine-optimized. Used by sessions
// when the engine acknowledges a declare_keyexpr.
func Optimized(k KeyExpr) KeyExpr {
	return KeyExpr{expr: k.expr, optimized: true}
}

// String returns the canonical textual form.
func (k KeyExpr) String() string { return k.expr }

// IsOptimized reports whether this handle was returned by a
// declare_keyexpr call.
func (k KeyExpr) IsOptimized() bool { return k.optimized }

// IsWild reports whether the expression contains any wildcard chunk.
func (k KeyExpr) IsWild() bool {
	for _, c := range chunks(k.expr) {
		if c == "*" || c == "**" {
			return true
		}
	}
	return false
}

// Join appends a sub-expression, validating the result.
func (k KeyExpr) Join(suffix string) (KeyExpr, error) {
	return New(k.expr + "/" + suffix)
}

// Intersects reports whether the two expressions share at least one
// matching concrete key.
func (k KeyExpr) Intersects(o KeyExpr) bool {
	return intersect(chunks(k.expr), chunks(o.expr))
}

// Includes reports whether every key matched by o is also matched by k.
func (k KeyExpr) Includes(o KeyExpr) bool {
	return include(chunks(k.expr), chunks(o.expr))
}

// canonize validates s and rewrites it into canonical form:
// consecutive "**" chunks are collapsed and "**/*" is normalized
// to "*/**" so equal expressions compare equal as strings.
func canonize(s string) (string, error) {
	if s == "" {
		return "", ErrEmpty
	}
	if strings.HasPrefix(s, "/") {
		return "", fmt.Errorf("%w: %q", ErrLeadingSlash, s)
	}
	if strings.HasSuffix(s, "/") {
		return "", fmt.Errorf("%w: %q", ErrTrailingSlash, s)
	}

	in := strings.Split(s, "/")
	out := make([]string, 0, len(in))
	for _, c := range in {
		if c == "" {
			return "", fmt.Errorf("%w: %q", ErrEmptyChunk, s)
		}
		if strings.ContainsAny(c, reservedChars) {
			return "", fmt.Errorf("%w: %q contains a reserved character", ErrInvalidChunk, c)
		}
		if strings.Contains(c, "*") && c != "*" && c != "**" {
			return "", fmt.Errorf("%w: %q mixes '*' with other characters", ErrInvalidChunk, c)
		}
		if c == "**" && len(out) > 0 && out[len(out)-1] == "**" {
			continue // collapse **/**
		}
		if c == "*" && len(out) > 0 && out[len(out)-1] == "**" {
			// **/* matches the same keys as */**
			out[len(out)-1] = "*"
			out = append(out, "**")
			continue
		}
		out = append(out, c)
	}
	return strings.Join(out, "/"), nil
}

func chunks(s string) []string {
	return strings.Split(s, "/")
}

// chunkMatch reports whether pattern chunk p matches chunk c, where c
// may itself be the single-chunk wildcard.
func chunkMatch(p, c string) bool {
	return p == "*" || c == "*" || p == c
}

// intersect reports whether chunk lists a and b can both match some
// concrete key. "**" may absorb zero or more chunks on either side.
func intersect(a, b []string) bool {
	switch {
	case len(a) == 0:
		return len(b) == 0 || allSuper(b)
	case len(b) == 0:
		return allSuper(a)
	case a[0] == "**":
		return intersect(a[1:], b) || intersect(a, b[1:])
	case b[0] == "**":
		return intersect(a, b[1:]) || intersect(a[1:], b)
	default:
		return chunkMatch(a[0], b[0]) && intersect(a[1:], b[1:])
	}
}

// include reports whether pattern p matches every key that pattern k
// matches.
func include(p, k []string) bool {
	switch {
	case len(p) == 0:
		return len(k) == 0
	case p[0] == "**":
		if len(p) == 1 {
			return true
		}
		for i := 0; i <= len(k); i++ {
			if include(p[1:], k[i:]) {
				return true
			}
		}
		return false
	case len(k) == 0:
		return false
	case k[0] == "**":
		// k matches arbitrarily long keys; only "**" in p could cover that.
		return false
	default:
		if p[0] != "*" && p[0] != k[0] {
			return false
		}
		return include(p[1:], k[1:])
	}
}

// allSuper reports whether all chunks are "**".
func allSuper(cs []string) bool {
	for _, c := range cs {
		if c != "**" {
			return false
		}
	}
	return true
}
