package proto

import (
	"errors"
	"testing"
)

func TestRandomPeerIDUnique(t *testing.T) {
	a, b := RandomPeerID(), RandomPeerID()
	if a == b {
		t.Error("two random peer IDs collided")
	}
	if a.IsZero() {
		t.Error("random peer ID is zero")
	}
}

func TestDerivePeerIDStable(t *testing.T) {
	a := DerivePeerID("node-1")
	b := DerivePeerID("node-1")
	if a != b {
		t.Error("derived peer ID is not stable for the same seed")
	}
	if a == DerivePeerID("node-2") {
		t.Error("different seeds derived the same peer ID")
	}
}

func TestParsePeerIDRoundTrip(t *testing.T) {
	id := RandomPeerID()
	parsed, err := ParsePeerID(id.String())
	if err != nil {
		t.Fatalf("ParsePeerID error = %v", err)
	}
	if parsed != id {
		t.Errorf("round trip mismatch: %s != %s", parsed, id)
	}
}

func TestParsePeerIDInvalid(t *testing.T) {
	for _, in := range []string{"", "zz", "abcd", "0102030405060708090a0b0c0d0e0f"} {
		if _, err := ParsePeerID(in); !errors.Is(err, ErrBadPeerID) {
			t.Errorf("ParsePeerID(%q) error = %v, want ErrBadPeerID", in, err)
		}
	}
}

func TestParseMatcher(t *testing.T) {
	tests := []struct {
		in   string
		want Matcher
	}{
		{"client", Matcher(WhatAmIClient)},
		{"peer", Matcher(WhatAmIPeer)},
		{"router", Matcher(WhatAmIRouter)},
		{"client|peer|router", MatchAll},
		{"router | client", Matcher(WhatAmIRouter | WhatAmIClient)},
	}

	for _, tt := range tests {
		m, err := ParseMatcher(tt.in)
		if err != nil {
			t.Errorf("ParseMatcher(%q) error = %v", tt.in, err)
			continue
		}
		if m != tt.want {
			t.Errorf("ParseMatcher(%q) = %v, want %v", tt.in, m, tt.want)
		}
	}
}

func TestParseMatcherInvalid(t *testing.T) {
	for _, in := range []string{"", "bogus", "client|bogus", "|"} {
		if _, err := ParseMatcher(in); !errors.Is(err, ErrBadMatcher) {
			t.Errorf("ParseMatcher(%q) error = %v, want ErrBadMatcher", in, err)
		}
	}
}

func TestMatcherMatches(t *testing.T) {
	m, err := ParseMatcher("client|router")
	if err != nil {
		t.Fatalf("ParseMatcher error = %v", err)
	}
	if !m.Matches(WhatAmIClient) || !m.Matches(WhatAmIRouter) {
		t.Error("matcher should match client and router")
	}
	if m.Matches(WhatAmIPeer) {
		t.Error("matcher should not match peer")
	}
	if m.String() != "client|router" {
		t.Errorf("String = %q", m.String())
	}
}
