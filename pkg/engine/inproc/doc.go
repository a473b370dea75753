// Package inproc implements the engine interface for connections that
// share one process: a broker routes publications to intersecting
// subscribers, keeps the latest value per concrete key to answer
// queries, and dispatches queries to matching queryables.
//
// Samples cross the broker in their CBOR wire form, so a receiver can
// never observe a publisher's later mutations of a payload.
//
// Query targeting: the broker's value store always answers. Matching
// queryables are dispatched per the query target — all of them for
// "all", only complete ones for "all_complete", and for
// "best_matching" the complete ones when any exist, otherwise all.
// Replies are accepted while a queryable handler runs; once it
// returns, the query is finished.
package inproc
