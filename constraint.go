package rootparams

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-rootparams/pkg/activity"
)

// ErrNoEvaluator indicates constraints were configured but no evaluator
// could be resolved.
var ErrNoEvaluator = errors.New("rootparams: evaluator not configured")

// checkConstraints evaluates the configured constraints against a fully
// known wrapper. Trapped and hanging wrappers are never checked: their
// placeholder values are not final.
func (r *Resolver) checkConstraints(scope *Scope, wrapper *Params) error {
	if len(r.cfg.constraints) == 0 {
		return nil
	}
	evaluator, err := r.resolveEvaluator()
	if err != nil {
		return err
	}
	engine := evaluatorEngineName(evaluator)
	for _, expression := range r.cfg.constraints {
		ctx := RuleContext{Params: wrapper.snapshot(), Route: scope.Route()}.withDefaults()
		start := time.Now()
		value, evalErr := evaluator.Evaluate(ctx, expression)
		duration := time.Since(start)
		evalErr = wrapEvaluationError("", expression, ctx.routeLabel(), evalErr)
		r.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
			Engine:   engine,
			Expr:     expression,
			Route:    scope.Route(),
			Duration: duration,
			Err:      evalErr,
		})
		if evalErr != nil {
			return evalErr
		}
		if ok, isBool := value.(bool); !isBool || !ok {
			r.notifyConstraintViolated(scope, expression, value)
			return &ConstraintError{
				Route:      scope.Route(),
				Expression: expression,
				Value:      value,
			}
		}
	}
	return nil
}

func (r *Resolver) notifyConstraintViolated(scope *Scope, expression string, value any) {
	if !r.cfg.hooks.Enabled() {
		return
	}
	event := activity.BuildConstraintViolatedEvent(activity.RenderEventInput{
		Route:      scope.Route(),
		Expression: expression,
		ParamSetID: scope.Params().Identity(),
		Metadata:   map[string]any{"value": value},
	})
	_ = r.cfg.hooks.Notify(context.Background(), event)
}

// resolveEvaluator returns the evaluator settled at construction. NewResolver
// installs the expr default whenever constraints are configured, so this only
// fails for resolvers built outside NewResolver.
func (r *Resolver) resolveEvaluator() (Evaluator, error) {
	if r.cfg.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	return r.cfg.evaluator, nil
}

func (r *Resolver) evaluatorLogger() EvaluatorLogger {
	if r.cfg.logger != nil {
		return r.cfg.logger
	}
	return noopEvaluatorLogger{}
}
