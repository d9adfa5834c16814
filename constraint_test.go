package rootparams

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/goliatone/go-rootparams/pkg/activity"
)

var evaluatorFactories = []struct {
	name string
	new  func(cache ProgramCache, registry *FunctionRegistry) Evaluator
}{
	{
		name: "expr",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []ExprEvaluatorOption{}
			if cache != nil {
				opts = append(opts, ExprWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, ExprWithFunctionRegistry(registry))
			}
			return NewExprEvaluator(opts...)
		},
	},
	{
		name: "cel",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []CELEvaluatorOption{}
			if cache != nil {
				opts = append(opts, CELWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, CELWithFunctionRegistry(registry))
			}
			return NewCELEvaluator(opts...)
		},
	},
	{
		name: "js",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []JSEvaluatorOption{}
			if cache != nil {
				opts = append(opts, JSWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, JSWithFunctionRegistry(registry))
			}
			return NewJSEvaluator(opts...)
		},
	},
}

type memoryProgramCache struct {
	mu    sync.Mutex
	store map[string]any
	hits  int
}

func (c *memoryProgramCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.store[key]
	if ok {
		c.hits++
	}
	return value, ok
}

func (c *memoryProgramCache) Set(key string, program any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = make(map[string]any)
	}
	c.store[key] = program
}

func resolveWithConstraint(t *testing.T, opts ...Option) (*Params, error) {
	t.Helper()
	base := []Option{WithSignals(&captureSignals{})}
	resolver := NewResolver(append(base, opts...)...)
	scope := newTestScope(t)
	return resolver.RootParams(ContextWithScope(context.Background(), scope))
}

func TestConstraintPassAndFail(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			if evaluator == nil {
				if factory.name == "js" && !jsEvaluatorAvailable() {
					t.Skip("js evaluator not compiled in")
				}
				t.Fatalf("expected evaluator for %s", factory.name)
			}

			if _, err := resolveWithConstraint(t,
				WithEvaluator(evaluator),
				WithConstraint(`params.lang == "en"`),
			); err != nil {
				t.Fatalf("expected passing constraint, got %v", err)
			}

			_, err := resolveWithConstraint(t,
				WithEvaluator(evaluator),
				WithConstraint(`params.lang == "fr"`),
			)
			var violation *ConstraintError
			if !errors.As(err, &violation) {
				t.Fatalf("expected *ConstraintError, got %v", err)
			}
			if violation.Expression != `params.lang == "fr"` {
				t.Fatalf("unexpected expression on violation: %q", violation.Expression)
			}
		})
	}
}

func TestConstraintDefaultsToExprEvaluator(t *testing.T) {
	if _, err := resolveWithConstraint(t,
		WithConstraint(`route == "/[lang]/[locale]"`),
	); err != nil {
		t.Fatalf("expected the default evaluator to resolve, got %v", err)
	}
}

func TestConstraintEvaluationErrorSurfaces(t *testing.T) {
	_, err := resolveWithConstraint(t,
		WithConstraint(`1 +`),
	)
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected *EvaluationError, got %v", err)
	}
}

func TestConstraintCustomFunction(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			registry := NewFunctionRegistry()
			if err := registry.Register("supported", func(args ...any) (any, error) {
				if len(args) != 1 {
					return nil, errors.New("supported expects one argument")
				}
				return args[0] == "en", nil
			}); err != nil {
				t.Fatalf("unexpected error registering function: %v", err)
			}
			evaluator := factory.new(nil, registry)
			if evaluator == nil {
				t.Skip("evaluator not compiled in")
			}

			if _, err := resolveWithConstraint(t,
				WithEvaluator(evaluator),
				WithConstraint(`call("supported", params.lang) == true`),
			); err != nil {
				t.Fatalf("expected custom function constraint to pass, got %v", err)
			}
		})
	}
}

func TestCELCallFunctionArities(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("stamp", func(args ...any) (any, error) {
		return "stamped", nil
	}); err != nil {
		t.Fatalf("unexpected error registering function: %v", err)
	}
	if err := registry.Register("join", func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, errors.New("join expects two arguments")
		}
		return fmt.Sprintf("%v:%v", args[0], args[1]), nil
	}); err != nil {
		t.Fatalf("unexpected error registering function: %v", err)
	}

	evaluator := NewCELEvaluator(CELWithFunctionRegistry(registry))
	ctx := RuleContext{
		Params: map[string]any{"lang": "en"},
		Route:  "/[lang]",
	}

	value, err := evaluator.Evaluate(ctx, `call("stamp")`)
	if err != nil {
		t.Fatalf("unexpected error for a name-only call: %v", err)
	}
	if value != "stamped" {
		t.Fatalf("unexpected result: %v", value)
	}

	value, err = evaluator.Evaluate(ctx, `call("join", params.lang, route)`)
	if err != nil {
		t.Fatalf("unexpected error for a two-argument call: %v", err)
	}
	if value != "en:/[lang]" {
		t.Fatalf("unexpected result: %v", value)
	}

	if _, err := evaluator.Evaluate(ctx, `call("missing")`); err == nil {
		t.Fatalf("expected an error for an unregistered function")
	}
}

func TestConstraintProgramCacheReuse(t *testing.T) {
	cache := &memoryProgramCache{}
	evaluator := NewExprEvaluator(ExprWithProgramCache(cache))
	resolver := NewResolver(
		WithSignals(&captureSignals{}),
		WithEvaluator(evaluator),
		WithConstraint(`params.lang == "en"`),
	)

	for i := 0; i < 2; i++ {
		scope := newTestScope(t)
		if _, err := resolver.RootParams(ContextWithScope(context.Background(), scope)); err != nil {
			t.Fatalf("unexpected error on pass %d: %v", i, err)
		}
	}
	if cache.hits == 0 {
		t.Fatalf("expected the compiled program to be served from cache")
	}
}

func TestConstraintLogsEvaluation(t *testing.T) {
	var events []EvaluatorLogEvent
	logger := EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
		events = append(events, event)
	})

	if _, err := resolveWithConstraint(t,
		WithEvaluatorLogger(logger),
		WithConstraint(`params.locale == "us"`),
	); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one log event, got %d", len(events))
	}
	if events[0].Engine == "" || events[0].Route != "/[lang]/[locale]" {
		t.Fatalf("unexpected log event: %+v", events[0])
	}
}

func TestConstraintViolationNotifiesHooks(t *testing.T) {
	capture := &activity.CaptureHook{}
	_, err := resolveWithConstraint(t,
		WithActivityHooks(activity.Hooks{capture}),
		WithConstraint(`params.lang == "fr"`),
	)
	var violation *ConstraintError
	if !errors.As(err, &violation) {
		t.Fatalf("expected *ConstraintError, got %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected one activity event, got %d", len(capture.Events))
	}
	event := capture.Events[0]
	if event.Verb != "params.constraint.violated" || event.ObjectType != "params" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Metadata["value"] != false {
		t.Fatalf("expected the evaluated value in metadata, got %+v", event.Metadata)
	}
}

func TestConstraintSkippedForTrappedWrappers(t *testing.T) {
	resolver := NewResolver(
		WithSignals(&captureSignals{}),
		WithConstraint(`params.lang == "fr"`),
	)
	scope := newTestScope(t, WithPlaceholders("lang"))
	ctx := ContextWithUnit(
		ContextWithScope(context.Background(), scope),
		&PartialPrerender{Tracking: NewTracking()},
	)
	if _, err := resolver.PrerenderParams(ctx); err != nil {
		t.Fatalf("expected trapped wrapper to skip constraints, got %v", err)
	}
}
