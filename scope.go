package rootparams

import (
	"context"
	"sync"
)

// Scope is the work scope for one render pass. The render engine installs it
// on the request context before invoking application code and calls Finish
// once the pass completes.
//
// The scope owns the identity-keyed wrapper cache: for the lifetime of one
// render a given ParamSet identity maps to at most one wrapper, and every
// builder path consults the same table. Entries are keyed by the identity
// token rather than the set itself, so the table never extends a ParamSet's
// lifetime, and Finish drops the whole table with the render.
type Scope struct {
	route        string
	params       *ParamSet
	placeholders PlaceholderKeys

	mu           sync.Mutex
	wrappers     map[string]*Params
	dynamicUsage string
	finished     bool
}

// ScopeOption configures Scope construction.
type ScopeOption func(*Scope)

// WithPlaceholders marks names as placeholders for this render pass.
func WithPlaceholders(names ...string) ScopeOption {
	return func(s *Scope) {
		s.placeholders = NewPlaceholderKeys(names...)
	}
}

// NewScope constructs the scope for one render of route over params.
func NewScope(route string, params *ParamSet, opts ...ScopeOption) *Scope {
	scope := &Scope{
		route:    route,
		params:   params,
		wrappers: make(map[string]*Params),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(scope)
		}
	}
	return scope
}

// Route returns the route identifier for this render.
func (s *Scope) Route() string {
	if s == nil {
		return ""
	}
	return s.route
}

// Params returns the ParamSet handed to this render.
func (s *Scope) Params() *ParamSet {
	if s == nil {
		return nil
	}
	return s.params
}

// Placeholders returns the placeholder names for this render pass.
func (s *Scope) Placeholders() PlaceholderKeys {
	if s == nil {
		return nil
	}
	return s.placeholders
}

// MarkDynamic records why the route abandoned static generation. The first
// recorded expression wins; it is what the engine reports to developers.
func (s *Scope) MarkDynamic(expression string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dynamicUsage == "" {
		s.dynamicUsage = expression
	}
}

// DynamicUsage returns the recorded reason the route went dynamic, if any.
func (s *Scope) DynamicUsage() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dynamicUsage
}

// Finish clears the wrapper cache. Resolutions after Finish build fresh
// wrappers but are outside the render's identity guarantees.
func (s *Scope) Finish() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wrappers = make(map[string]*Params)
	s.finished = true
}

func (s *Scope) lookupWrapper(ps *ParamSet) (*Params, bool) {
	if s == nil || ps == nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	wrapper, ok := s.wrappers[ps.Identity()]
	return wrapper, ok
}

func (s *Scope) storeWrapper(ps *ParamSet, wrapper *Params) {
	if s == nil || ps == nil || wrapper == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.wrappers[ps.Identity()] = wrapper
}

type scopeContextKey struct{}

type unitContextKey struct{}

// ContextWithScope installs scope on ctx.
func ContextWithScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFromContext returns the active scope, or nil when none is installed.
func ScopeFromContext(ctx context.Context) *Scope {
	if ctx == nil {
		return nil
	}
	scope, _ := ctx.Value(scopeContextKey{}).(*Scope)
	return scope
}

// ContextWithUnit installs the render-unit descriptor on ctx.
func ContextWithUnit(ctx context.Context, unit Unit) context.Context {
	return context.WithValue(ctx, unitContextKey{}, unit)
}

// UnitFromContext returns the active render unit, or nil for plain requests.
func UnitFromContext(ctx context.Context) Unit {
	if ctx == nil {
		return nil
	}
	unit, _ := ctx.Value(unitContextKey{}).(Unit)
	return unit
}
