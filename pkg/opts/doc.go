// Package opts implements the option overlay used by every session
// operation: a base per-operation configuration merged with a sparse
// set of caller-supplied named overrides.
//
// Each operation has its own configuration struct with a Default
// constructor and an Apply method. Apply inspects only the option
// names the operation recognizes; unrecognized names are silently
// ignored for forward compatibility, while a recognized name carrying
// a value of the wrong type (or an enumerated value with an invalid
// discriminant) aborts the whole operation before any network action.
// Option application order never matters: every option maps to an
// independent field.
package opts
