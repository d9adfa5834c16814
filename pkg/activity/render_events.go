package activity

import "time"

// RenderEventInput describes the common fields for render lifecycle events.
type RenderEventInput struct {
	Route      string
	Unit       string
	Expression string
	ParamSetID string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildParamsAccessedEvent constructs a normalized activity event for a
// dynamic root-params access.
func BuildParamsAccessedEvent(input RenderEventInput) Event {
	return buildRenderEvent("params.accessed", input)
}

// BuildPrerenderSuspendedEvent constructs an activity event describing a
// suspended static pass.
func BuildPrerenderSuspendedEvent(input RenderEventInput) Event {
	return buildRenderEvent("prerender.suspended", input)
}

// BuildPrerenderInterruptedEvent constructs an activity event describing a
// route that abandoned static generation.
func BuildPrerenderInterruptedEvent(input RenderEventInput) Event {
	return buildRenderEvent("prerender.interrupted", input)
}

// BuildConstraintViolatedEvent constructs an activity event for a failed
// root-param constraint.
func BuildConstraintViolatedEvent(input RenderEventInput) Event {
	return buildRenderEvent("params.constraint.violated", input)
}

func buildRenderEvent(verb string, input RenderEventInput) Event {
	objectID := input.ParamSetID
	if objectID == "" {
		objectID = input.Route
	}
	return Event{
		Verb:       verb,
		Route:      input.Route,
		Unit:       input.Unit,
		Expression: input.Expression,
		ObjectType: "params",
		ObjectID:   objectID,
		Channel:    input.Channel,
		Metadata:   input.Metadata,
		OccurredAt: input.OccurredAt,
	}
}
