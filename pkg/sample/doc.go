// Package sample defines the data units that flow through the zlink
// overlay: immutable Values (payload plus encoding), Samples (a value
// delivered to a subscriber, tagged put or delete) and Replies (one
// response to a distributed query).
//
// Samples cross engine boundaries in a compact CBOR form with integer
// map keys; see codec.go.
package sample
