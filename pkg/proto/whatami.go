package proto

import (
	"errors"
	"fmt"
	"strings"
)

// Role matcher errors.
var (
	ErrBadMatcher = errors.New("invalid role matcher")
)

// WhatAmI identifies the role a peer plays in the overlay.
type WhatAmI uint8

const (
	// WhatAmIClient is a leaf peer that relies on a router for routing.
	WhatAmIClient WhatAmI = 1 << iota

	// WhatAmIPeer participates in peer-to-peer routing.
	WhatAmIPeer

	// WhatAmIRouter routes on behalf of clients and other routers.
	WhatAmIRouter
)

// String returns the role name.
func (w WhatAmI) String() string {
	switch w {
	case WhatAmIClient:
		return "client"
	case WhatAmIPeer:
		return "peer"
	case WhatAmIRouter:
		return "router"
	default:
		return "unknown"
	}
}

// ParseWhatAmI parses a single role name.
func ParseWhatAmI(s string) (WhatAmI, error) {
	switch s {
	case "client":
		return WhatAmIClient, nil
	case "peer":
		return WhatAmIPeer, nil
	case "router":
		return WhatAmIRouter, nil
	default:
		return 0, fmt.Errorf("%w: unknown role %q", ErrBadMatcher, s)
	}
}

// Matcher is a set of peer roles, used to filter scouting results.
// The zero value matches nothing.
type Matcher uint8

// MatchAll matches every peer role.
const MatchAll = Matcher(WhatAmIClient | WhatAmIPeer | WhatAmIRouter)

// ParseMatcher parses a `|`-separated list drawn from "client",
// "peer" and "router". Whitespace around entries is tolerated; an
// empty string or an unknown entry is an error.
func ParseMatcher(s string) (Matcher, error) {
	if strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("%w: empty", ErrBadMatcher)
	}
	var m Matcher
	for _, part := range strings.Split(s, "|") {
		w, err := ParseWhatAmI(strings.TrimSpace(part))
		if err != nil {
			return 0, fmt.Errorf("%w: must be a `|`-separated list of `peer`, `client` or `router`, got %q", ErrBadMatcher, s)
		}
		m |= Matcher(w)
	}
	return m, nil
}

// Matches reports whether the role is in the set.
func (m Matcher) Matches(w WhatAmI) bool {
	return m&Matcher(w) != 0
}

// String returns the `|`-separated canonical form.
func (m Matcher) String() string {
	var parts []string
	for _, w := range []WhatAmI{WhatAmIClient, WhatAmIPeer, WhatAmIRouter} {
		if m.Matches(w) {
			parts = append(parts, w.String())
		}
	}
	return strings.Join(parts, "|")
}
