package rootparams

import (
	"fmt"

	"github.com/google/uuid"
)

// Value is a root parameter value: a string for a single route segment or a
// []string for catch-all segments. Raw router output should be passed through
// internal/hydrate before it reaches a ParamSet.
type Value = any

// Param pairs a parameter name with its value. Used to construct ParamSets in
// declaration order.
type Param struct {
	Key   string
	Value Value
}

// ParamSet is the ordered root parameter mapping the render engine produces
// once per render pass. It is immutable after construction and carries an
// identity token minted exactly once; the token keys the per-render wrapper
// cache so the cache never holds the set itself.
type ParamSet struct {
	identity string
	keys     []string
	values   map[string]Value
}

// NewParamSet builds a ParamSet from params, preserving declaration order.
// Empty and duplicate keys are rejected.
func NewParamSet(params ...Param) (*ParamSet, error) {
	set := &ParamSet{
		identity: uuid.NewString(),
		keys:     make([]string, 0, len(params)),
		values:   make(map[string]Value, len(params)),
	}
	for _, param := range params {
		if param.Key == "" {
			return nil, ErrEmptyParamName
		}
		if _, exists := set.values[param.Key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateParam, param.Key)
		}
		set.keys = append(set.keys, param.Key)
		set.values[param.Key] = param.Value
	}
	return set, nil
}

// Identity returns the token minted for this set at construction.
func (ps *ParamSet) Identity() string {
	if ps == nil {
		return ""
	}
	return ps.identity
}

// Keys returns the parameter names in declaration order.
func (ps *ParamSet) Keys() []string {
	if ps == nil || len(ps.keys) == 0 {
		return nil
	}
	out := make([]string, len(ps.keys))
	copy(out, ps.keys)
	return out
}

// Get returns the value stored for key.
func (ps *ParamSet) Get(key string) (Value, bool) {
	if ps == nil {
		return nil, false
	}
	value, ok := ps.values[key]
	return value, ok
}

// Len returns the number of parameters in the set.
func (ps *ParamSet) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.keys)
}

// Values returns a detached copy of the underlying mapping.
func (ps *ParamSet) Values() map[string]Value {
	if ps == nil {
		return map[string]Value{}
	}
	out := make(map[string]Value, len(ps.values))
	for key, value := range ps.values {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value Value) Value {
	if segments, ok := value.([]string); ok {
		return append([]string(nil), segments...)
	}
	return value
}

// PlaceholderKeys is the set of parameter names whose concrete value is not
// yet known while a static fallback shell is produced.
type PlaceholderKeys map[string]struct{}

// NewPlaceholderKeys builds a placeholder set from names.
func NewPlaceholderKeys(names ...string) PlaceholderKeys {
	if len(names) == 0 {
		return nil
	}
	keys := make(PlaceholderKeys, len(names))
	for _, name := range names {
		keys[name] = struct{}{}
	}
	return keys
}

// Has reports whether name is a placeholder.
func (p PlaceholderKeys) Has(name string) bool {
	_, ok := p[name]
	return ok
}
