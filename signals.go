package rootparams

import (
	"context"

	"github.com/goliatone/go-rootparams/pkg/activity"
)

// Signals supplies the cooperative control-flow primitives the render engine
// implements. Suspend and Interrupt return typed errors the calling
// continuation must hand back immediately: nothing may execute past them in
// the suspended or interrupted branch. Hang returns a wrapper whose only
// transition is rejection when the external signal fires.
type Signals interface {
	// Suspend stops the current static pass at expression, recording the
	// access into tracking. It returns a *SuspendedError.
	Suspend(route, expression string, tracking *Tracking) error
	// Interrupt cancels static generation for the whole route at expression.
	// It returns an *InterruptedError.
	Interrupt(expression string, scope *Scope, unit Unit) error
	// RecordDynamicAccess notes that dynamic data was read during the render,
	// for instrumentation and dev diagnostics. It always returns normally.
	RecordDynamicAccess(ctx context.Context, scope *Scope, unit Unit, expression string)
	// Hang builds a never-settling wrapper bound to signal.
	Hang(signal *AbortSignal, label string) *Params
}

// RenderSignalsOption configures the built-in Signals implementation.
type RenderSignalsOption func(*renderSignals)

// RenderSignalsWithEmitter attaches an activity emitter; suspension,
// interruption, and dynamic-access events are forwarded to it.
func RenderSignalsWithEmitter(emitter *activity.Emitter) RenderSignalsOption {
	return func(s *renderSignals) {
		s.emitter = emitter
	}
}

// NewRenderSignals constructs the built-in Signals implementation. Resolvers
// fall back to it when none is configured.
func NewRenderSignals(opts ...RenderSignalsOption) Signals {
	s := &renderSignals{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type renderSignals struct {
	emitter *activity.Emitter
}

func (s *renderSignals) Suspend(route, expression string, tracking *Tracking) error {
	tracking.Record(route, expression)
	s.emit(context.Background(), activity.BuildPrerenderSuspendedEvent(activity.RenderEventInput{
		Route:      route,
		Unit:       string(UnitPartialPrerender),
		Expression: expression,
	}))
	return &SuspendedError{Route: route, Expression: expression}
}

func (s *renderSignals) Interrupt(expression string, scope *Scope, unit Unit) error {
	scope.MarkDynamic(expression)
	unitTracking(unit).Record(scope.Route(), expression)
	s.emit(context.Background(), activity.BuildPrerenderInterruptedEvent(activity.RenderEventInput{
		Route:      scope.Route(),
		Unit:       unitLabel(unit),
		Expression: expression,
		ParamSetID: scope.Params().Identity(),
	}))
	return &InterruptedError{Route: scope.Route(), Expression: expression}
}

func (s *renderSignals) RecordDynamicAccess(ctx context.Context, scope *Scope, unit Unit, expression string) {
	s.emit(ctx, activity.BuildParamsAccessedEvent(activity.RenderEventInput{
		Route:      scope.Route(),
		Unit:       unitLabel(unit),
		Expression: expression,
		ParamSetID: scope.Params().Identity(),
	}))
}

func (s *renderSignals) Hang(signal *AbortSignal, label string) *Params {
	return newHangingParams(signal, label)
}

func (s *renderSignals) emit(ctx context.Context, event activity.Event) {
	if s.emitter == nil || !s.emitter.Enabled() {
		return
	}
	// Hook failures must not disturb rendering; the emitter joins and
	// surfaces them to hooks' own error handling.
	_ = s.emitter.Emit(ctx, event)
}
