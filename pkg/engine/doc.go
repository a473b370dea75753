// Package engine defines the narrow interface the session façade
// consumes from the underlying overlay engine: opening a connection,
// submitting publications and queries, declaring resources, and
// enumerating known peers.
//
// The façade never reaches into an engine's internals; everything it
// needs is expressed here. Package engine/inproc provides the
// in-process implementation used for local deployments and tests.
package engine
