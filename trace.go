package rootparams

import (
	"encoding/json"
)

// Trace captures provenance information for a root parameter across the
// segment chain that produced its effective value.
type Trace struct {
	Key      string       `json:"key"`
	Segments []Provenance `json:"segments"`
}

// Provenance details how a specific segment contributed to a traced key.
type Provenance struct {
	Segment string `json:"segment"`
	Root    bool   `json:"root"`
	Value   any    `json:"value,omitempty"`
	Found   bool   `json:"found"`
}

// TraceParam reports, segment by segment, where key appears in the chain.
// Non-root segments are included so developers can see values that were
// dropped by root-only filtering.
func TraceParam(key string, segments ...SegmentParams) Trace {
	trace := Trace{Key: key}
	for _, segment := range segments {
		value, found := segment.Params[key]
		trace.Segments = append(trace.Segments, Provenance{
			Segment: segment.Segment,
			Root:    segment.Root,
			Value:   value,
			Found:   found,
		})
	}
	return trace
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
