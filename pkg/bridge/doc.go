// Package bridge wraps caller-supplied event handlers so the engine
// can invoke them from its own delivery goroutines.
//
// A handler that panics has no channel back to the code that
// registered it, and letting the panic unwind an engine goroutine
// would corrupt shared engine state. The bridge therefore captures
// the panic and its stack, reports both, and terminates the process.
// Every handler registration in this module goes through a bridge;
// handlers are never invoked bare.
package bridge
