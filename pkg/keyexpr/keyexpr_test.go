package keyexpr

import (
	"errors"
	"testing"
)

func TestNewValid(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"demo", "demo"},
		{"demo/example/temperature", "demo/example/temperature"},
		{"demo/*/temperature", "demo/*/temperature"},
		{"demo/**", "demo/**"},
		{"demo/**/**", "demo/**"},
		{"demo/**/*", "demo/*/**"},
		{"**", "**"},
	}

	for _, tt := range tests {
		k, err := New(tt.in)
		if err != nil {
			t.Errorf("New(%q) error = %v", tt.in, err)
			continue
		}
		if k.String() != tt.want {
			t.Errorf("New(%q) = %q, want %q", tt.in, k.String(), tt.want)
		}
	}
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		in      string
		wantErr error
	}{
		{"", ErrEmpty},
		{"/demo", ErrLeadingSlash},
		{"demo/", ErrTrailingSlash},
		{"demo//example", ErrEmptyChunk},
		{"demo/ex?mple", ErrInvalidChunk},
		{"demo/ex#mple", ErrInvalidChunk},
		{"demo/ex*mple", ErrInvalidChunk},
	}

	for _, tt := range tests {
		_, err := New(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("New(%q) error = %v, want %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestIntersects(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"demo/example", "demo/example", true},
		{"demo/example", "demo/other", false},
		{"demo/*", "demo/example", true},
		{"demo/*", "demo/example/deep", false},
		{"demo/**", "demo/example/deep", true},
		{"demo/**", "demo", true},
		{"**", "anything/at/all", true},
		{"demo/*/leaf", "demo/**", true},
		{"a/**/z", "a/z", true},
		{"a/**/z", "a/b/c/z", true},
		{"a/**/z", "a/b/c", false},
		{"*/example", "other/example", true},
	}

	for _, tt := range tests {
		a, b := MustNew(tt.a), MustNew(tt.b)
		if got := a.Intersects(b); got != tt.want {
			t.Errorf("Intersects(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		// Intersection is symmetric.
		if got := b.Intersects(a); got != tt.want {
			t.Errorf("Intersects(%q, %q) = %v, want %v", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestIncludes(t *testing.T) {
	tests := []struct {
		pattern, key string
		want         bool
	}{
		{"demo/**", "demo/example", true},
		{"demo/**", "demo", true},
		{"demo/**", "other/example", false},
		{"demo/*", "demo/example", true},
		{"demo/*", "demo/**", false},
		{"**", "demo/**", true},
		{"demo/example", "demo/example", true},
		{"demo/example", "demo/*", false},
	}

	for _, tt := range tests {
		p, k := MustNew(tt.pattern), MustNew(tt.key)
		if got := p.Includes(k); got != tt.want {
			t.Errorf("Includes(%q, %q) = %v, want %v", tt.pattern, tt.key, got, tt.want)
		}
	}
}

func TestJoin(t *testing.T) {
	k := MustNew("demo")
	j, err := k.Join("example/*")
	if err != nil {
		t.Fatalf("Join error = %v", err)
	}
	if j.String() != "demo/example/*" {
		t.Errorf("Join = %q, want demo/example/*", j.String())
	}

	if _, err := k.Join(""); err == nil {
		t.Error("Join with empty suffix should fail")
	}
}

func TestOptimized(t *testing.T) {
	k := MustNew("demo/example")
	if k.IsOptimized() {
		t.Error("fresh key expression should not be optimized")
	}
	o := Optimized(k)
	if !o.IsOptimized() {
		t.Error("Optimized() handle should report optimized")
	}
	if o.String() != k.String() {
		t.Errorf("optimization changed expression: %q != %q", o.String(), k.String())
	}
}
