package rootparams

import "github.com/goliatone/go-rootparams/pkg/activity"

// WithActivityHooks attaches activity hooks to the Resolver. When no
// explicit Signals implementation is injected, the built-in one forwards
// dynamic-access, suspension, and interruption events to these hooks;
// constraint violations notify them directly.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *resolverConfig) {
		cfg.hooks = normalized
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
