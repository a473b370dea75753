// Package keyexpr implements key expressions, the hierarchical topic
// patterns that identify resources in the zlink overlay.
//
// A key expression is a `/`-separated list of non-empty chunks, for
// example "demo/example/temperature". Two wildcard chunks are defined:
// `*` matches exactly one chunk and `**` matches any number of chunks,
// including none. Expressions are validated and canonized at
// construction and immutable afterwards.
//
// A Selector pairs a key expression with optional query parameters
// ("demo/**?filter=last") and is used for distributed queries.
package keyexpr
