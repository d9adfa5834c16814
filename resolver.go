package rootparams

import (
	"context"
	"fmt"

	"github.com/goliatone/go-rootparams/pkg/activity"
)

// Option configures a Resolver.
type Option func(*resolverConfig)

type resolverConfig struct {
	signals      Signals
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	logger       EvaluatorLogger
	hooks        activity.Hooks
	constraints  []string
}

func applyOptions(opts []Option) resolverConfig {
	cfg := resolverConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithSignals injects the render engine's control-flow primitives.
func WithSignals(signals Signals) Option {
	return func(cfg *resolverConfig) {
		cfg.signals = signals
	}
}

// WithConstraint registers an expression checked against fully known root
// params when their wrapper is first built. Expressions see params, route,
// now, args, and metadata bindings; a non-true result surfaces as a
// *ConstraintError.
func WithConstraint(expression string) Option {
	return func(cfg *resolverConfig) {
		if expression == "" {
			return
		}
		cfg.constraints = append(cfg.constraints, expression)
	}
}

// Resolver resolves root parameters for the active render. The zero
// configuration uses the built-in Signals implementation and, when
// constraints are configured, the expr evaluator. A Resolver is immutable
// after construction and safe for concurrent use across renders.
type Resolver struct {
	cfg resolverConfig
}

// NewResolver constructs a Resolver. Defaults are settled here rather than
// on first use so shared instances never write to their configuration.
func NewResolver(opts ...Option) *Resolver {
	cfg := applyOptions(opts)
	if cfg.signals == nil {
		var sigOpts []RenderSignalsOption
		if cfg.hooks.Enabled() {
			sigOpts = append(sigOpts, RenderSignalsWithEmitter(activity.NewEmitter(cfg.hooks, activity.Config{Enabled: true})))
		}
		cfg.signals = NewRenderSignals(sigOpts...)
	}
	if len(cfg.constraints) > 0 && cfg.evaluator == nil {
		var exprOpts []ExprEvaluatorOption
		if cfg.programCache != nil {
			exprOpts = append(exprOpts, ExprWithProgramCache(cfg.programCache))
		}
		if cfg.functions != nil {
			exprOpts = append(exprOpts, ExprWithFunctionRegistry(cfg.functions))
		}
		cfg.evaluator = NewExprEvaluator(exprOpts...)
	}
	return &Resolver{cfg: cfg}
}

var defaultResolver = NewResolver()

// Resolve returns the root parameter wrapper for the active render using a
// default Resolver. See Resolver.RootParams.
func Resolve(ctx context.Context) (*Params, error) {
	return defaultResolver.RootParams(ctx)
}

// RootParams is the application-facing entry point. It requires an active
// render scope on ctx and dispatches on the render-unit descriptor:
//
//   - plain request (no unit): the wrapper resolves immediately, everything
//     is computed at request time;
//   - dynamic prerender: suspension happens lazily, per property, via the
//     partition decision;
//   - partial prerender: the whole access suspends eagerly as a unit, for
//     continuity with the other dynamic-data APIs in that mode;
//   - legacy prerender: the access interrupts static generation for the
//     whole route.
//
// Every branch records a dynamic-access event after dispatch, whether or not
// dispatch suspended or interrupted.
func (r *Resolver) RootParams(ctx context.Context) (*Params, error) {
	scope := ScopeFromContext(ctx)
	if scope == nil {
		return nil, fmt.Errorf("rootparams: Resolve called outside a render: %w", ErrNoRenderScope)
	}
	unit := UnitFromContext(ctx)
	signals := r.signals()

	var wrapper *Params
	var err error
	switch u := unit.(type) {
	case *PartialPrerender:
		err = signals.Suspend(scope.Route(), exprRootParams, u.Tracking)
	case *LegacyPrerender:
		err = signals.Interrupt(exprRootParams, scope, unit)
	default:
		wrapper, err = r.partition(scope, unit)
	}

	signals.RecordDynamicAccess(ctx, scope, unit, exprRootParams)
	if err != nil {
		return nil, err
	}
	return wrapper, nil
}

// PrerenderParams is the engine-facing entry point used when seeding a
// fallback shell. It skips the eager top-level suspension of RootParams and
// goes straight to the partition decision, so partial and legacy prerenders
// receive the per-property trapped wrapper. Both entry points share the
// scope's wrapper cache: a ParamSet resolved through one returns the
// identical wrapper through the other.
func (r *Resolver) PrerenderParams(ctx context.Context) (*Params, error) {
	scope := ScopeFromContext(ctx)
	if scope == nil {
		return nil, fmt.Errorf("rootparams: PrerenderParams called outside a render: %w", ErrNoRenderScope)
	}
	return r.partition(scope, UnitFromContext(ctx))
}

// partition classifies the scope's ParamSet as fully known or partially
// placeholder and builds the matching wrapper.
func (r *Resolver) partition(scope *Scope, unit Unit) (*Params, error) {
	ps := scope.Params()
	if !anyPlaceholder(ps, scope.Placeholders()) {
		return r.buildUntracked(scope)
	}

	switch u := unit.(type) {
	case *DynamicPrerender:
		if wrapper, ok := scope.lookupWrapper(ps); ok {
			return wrapper, nil
		}
		label := fmt.Sprintf("%s for route %q", exprRootParams, scope.Route())
		wrapper := r.signals().Hang(u.Signal, label)
		scope.storeWrapper(ps, wrapper)
		return wrapper, nil
	case *PartialPrerender:
		return r.buildTrapped(scope, unit, trapSuspend), nil
	case *LegacyPrerender:
		return r.buildTrapped(scope, unit, trapAbort), nil
	default:
		// Plain requests always compute concrete values, so placeholder
		// names that survived into a request render are treated as known.
		return r.buildUntracked(scope)
	}
}

func anyPlaceholder(ps *ParamSet, placeholders PlaceholderKeys) bool {
	if len(placeholders) == 0 {
		return false
	}
	for _, key := range ps.Keys() {
		if placeholders.Has(key) {
			return true
		}
	}
	return false
}

// buildUntracked returns the settled wrapper for a fully known ParamSet,
// reusing the cached one when present.
func (r *Resolver) buildUntracked(scope *Scope) (*Params, error) {
	ps := scope.Params()
	if wrapper, ok := scope.lookupWrapper(ps); ok {
		return wrapper, nil
	}
	wrapper := newResolvedParams(scope.Route(), ps)
	if err := r.checkConstraints(scope, wrapper); err != nil {
		return nil, err
	}
	scope.storeWrapper(ps, wrapper)
	return wrapper, nil
}

// buildTrapped returns the wrapper whose placeholder keys trap first access,
// reusing the cached one when present. Non-placeholder keys are copied once
// at construction, exactly as in the untracked path.
func (r *Resolver) buildTrapped(scope *Scope, unit Unit, policy trapPolicy) *Params {
	ps := scope.Params()
	if wrapper, ok := scope.lookupWrapper(ps); ok {
		return wrapper
	}
	wrapper := newTrappedParams(scope, unit, policy, r.signals())
	scope.storeWrapper(ps, wrapper)
	return wrapper
}

func (r *Resolver) signals() Signals {
	return r.cfg.signals
}
