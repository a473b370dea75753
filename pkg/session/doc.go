// Package session implements the zlink session façade: the single
// shared handle through which a process publishes values, issues
// deletions, runs distributed queries, and declares publishers,
// subscribers, pull subscribers and queryables.
//
// A Session wraps exactly one engine connection. Every resource
// declared from it shares that connection and holds a reference to
// it; the connection is released only when the session and all its
// declared resources have been closed. Caller-supplied handlers are
// always invoked through a callback bridge: a handler panic is
// reported and terminates the process.
package session
