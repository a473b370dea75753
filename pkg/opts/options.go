package opts

import (
	"errors"
	"fmt"
)

// Overlay errors.
var (
	ErrBadOption = errors.New("invalid option value")
)

// Options is the sparse set of named overrides a caller may attach to
// an operation. A nil map is valid and overrides nothing.
type Options map[string]any

// wrongType builds the error for a recognized option carrying a value
// of an unexpected dynamic type.
func wrongType(name, want string, got any) error {
	return fmt.Errorf("%w: option %q expects %s, got %T", ErrBadOption, name, want, got)
}

// applyBool overlays a boolean option onto dst if present.
func applyBool(o Options, name string, dst *bool) error {
	v, ok := o[name]
	if !ok {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		return wrongType(name, "bool", v)
	}
	*dst = b
	return nil
}

// applyEnum overlays an enumerated option onto dst if present. The
// value may be the enum type itself or its canonical string name;
// anything else, or an undefined discriminant, is an error.
func applyEnum[T interface {
	comparable
	Valid() bool
	String() string
}](o Options, name string, dst *T, parse func(string) (T, error)) error {
	v, ok := o[name]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case T:
		if !t.Valid() {
			return fmt.Errorf("%w: option %q: %v", ErrBadDiscriminant, name, t)
		}
		*dst = t
		return nil
	case string:
		parsed, err := parse(t)
		if err != nil {
			return fmt.Errorf("option %q: %w", name, err)
		}
		*dst = parsed
		return nil
	default:
		var zero T
		return wrongType(name, fmt.Sprintf("%T or string", zero), v)
	}
}
