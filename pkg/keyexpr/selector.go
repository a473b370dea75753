package keyexpr

import (
	"errors"
	"fmt"
	"strings"
)

// Selector errors.
var (
	ErrBadSelector = errors.New("invalid selector")
)

// Selector is a key expression plus optional query parameters, used
// for distributed queries. The textual form is "key/expr?params" where
// params is a `;`- or `&`-separated list of key=value pairs.
type Selector struct {
	keyExpr KeyExpr
	params  string
}

// ParseSelector parses the textual form of a selector.
func ParseSelector(s string) (Selector, error) {
	expr, params, _ := strings.Cut(s, "?")
	k, err := New(expr)
	if err != nil {
		return Selector{}, fmt.Errorf("%w: %v", ErrBadSelector, err)
	}
	return Selector{keyExpr: k, params: params}, nil
}

// NewSelector builds a selector from an already-validated key
// expression and raw parameters.
func NewSelector(k KeyExpr, params string) Selector {
	return Selector{keyExpr: k, params: params}
}

// KeyExpr returns the selector's key expression.
func (s Selector) KeyExpr() KeyExpr { return s.keyExpr }

// Params returns the raw parameter string, empty if none.
func (s Selector) Params() string { return s.params }

// DecodeParams splits the parameter string into key/value pairs.
// Pairs without '=' map to the empty string. Later duplicates win.
func (s Selector) DecodeParams() map[string]string {
	out := make(map[string]string)
	if s.params == "" {
		return out
	}
	for _, pair := range strings.FieldsFunc(s.params, func(r rune) bool {
		return r == ';' || r == '&'
	}) {
		k, v, _ := strings.Cut(pair, "=")
		out[k] = v
	}
	return out
}

// String returns the canonical textual form.
func (s Selector) String() string {
	if s.params == "" {
		return s.keyExpr.String()
	}
	return s.keyExpr.String() + "?" + s.params
}
