package rootparams

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-rootparams/internal/hydrate"
	"github.com/goliatone/go-rootparams/layering"
)

// SegmentParams describes the parameters one layout segment contributes to a
// route. Root marks segments that compose the page's root layout; only those
// contribute to root params.
type SegmentParams struct {
	Segment string
	Root    bool
	Params  map[string]any
}

// RootParamSet assembles the ParamSet for a route from its segment chain,
// ordered outermost to innermost. Non-root segment params are excluded, raw
// values are normalized to strings or string slices, and when the same name
// appears in several root segments the outermost occurrence wins. A root
// layout with zero parameters yields an empty set.
func RootParamSet(segments ...SegmentParams) (*ParamSet, error) {
	layers := make([]map[string]any, 0, len(segments))
	order := make([]string, 0)
	seen := make(map[string]struct{})
	for _, segment := range segments {
		if !segment.Root {
			continue
		}
		normalized, err := hydrate.NormalizeMap(segment.Params)
		if err != nil {
			return nil, fmt.Errorf("rootparams: segment %q: %w", segment.Segment, err)
		}
		layers = append(layers, normalized)
		for _, key := range sortedKeys(normalized) {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			order = append(order, key)
		}
	}

	merged := layering.MergeParams(layers...)
	params := make([]Param, 0, len(order))
	for _, key := range order {
		params = append(params, Param{Key: key, Value: merged[key]})
	}
	return NewParamSet(params...)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
