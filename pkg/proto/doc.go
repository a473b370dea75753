// Package proto defines the identity primitives shared across the
// zlink façade: peer identifiers, peer roles (WhatAmI), the role
// matcher used by scouting, and the Hello discovery message.
package proto
