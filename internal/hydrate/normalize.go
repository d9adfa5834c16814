package hydrate

import (
	"errors"
	"fmt"
)

// ErrUnsupportedValue indicates a router value that is neither a string nor
// a sequence of strings.
var ErrUnsupportedValue = errors.New("hydrate: parameter values must be strings or string slices")

// Normalize coerces a raw router value into a string (single segment) or a
// []string (catch-all segments). []any payloads from generic decoders are
// accepted when every element is a string.
func Normalize(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		segments := make([]string, 0, len(v))
		for _, element := range v {
			s, ok := element.(string)
			if !ok {
				return nil, fmt.Errorf("%w: got element %T", ErrUnsupportedValue, element)
			}
			segments = append(segments, s)
		}
		return segments, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrUnsupportedValue, raw)
	}
}

// NormalizeMap normalizes every value of a raw parameter map. The input map
// is left untouched.
func NormalizeMap(raw map[string]any) (map[string]any, error) {
	if raw == nil {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(raw))
	for key, value := range raw {
		normalized, err := Normalize(value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		out[key] = normalized
	}
	return out, nil
}
