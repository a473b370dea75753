package proto

import (
	"fmt"
	"strings"
)

// Hello is the discovery message a peer answers a scout with: its
// identity, role, and the locators it can be reached at.
type Hello struct {
	// ID is the responding peer's identifier.
	ID PeerID

	// WhatAmI is the responding peer's role.
	WhatAmI WhatAmI

	// Locators lists addresses the peer listens on, in the
	// "proto/host:port" form (e.g. "tcp/192.168.1.4:7447").
	Locators []string
}

// String returns a compact human-readable form.
func (h Hello) String() string {
	return fmt.Sprintf("Hello{id=%s, whatami=%s, locators=[%s]}",
		h.ID, h.WhatAmI, strings.Join(h.Locators, ", "))
}
