package layering

// MergeParams composes parameter maps ordered from strongest to weakest,
// returning a new map that keeps entries from stronger layers while filling
// any missing keys from weaker ones. For route params the outermost segment
// is the strongest layer.
func MergeParams(layers ...map[string]any) map[string]any {
	merged := make(map[string]any)
	for i := len(layers) - 1; i >= 0; i-- {
		for key, value := range layers[i] {
			merged[key] = CloneValue(value)
		}
	}
	return merged
}

// CloneMap returns a deep copy of a parameter map.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	clone := make(map[string]any, len(m))
	for key, value := range m {
		clone[key] = CloneValue(value)
	}
	return clone
}

// CloneValue copies a parameter value. Catch-all segments are stored as
// string slices and must not alias the source.
func CloneValue(value any) any {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		clone := make([]any, len(v))
		for i := range v {
			clone[i] = CloneValue(v[i])
		}
		return clone
	case map[string]any:
		return CloneMap(v)
	default:
		return value
	}
}
