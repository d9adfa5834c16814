package rootparams

import (
	"context"
	"fmt"
	"sync"
)

// exprRootParams tags whole-mapping accesses in suspension and interruption
// reports.
const exprRootParams = "rootparams.Resolve()"

func keyExpression(key string) string {
	return fmt.Sprintf("rootparams.Resolve().%s", key)
}

type trapPolicy uint8

const (
	trapNone trapPolicy = iota
	// trapSuspend suspends the current static pass when the key is read.
	trapSuspend
	// trapAbort cancels static generation for the whole route when the key
	// is read.
	trapAbort
)

// slot holds the per-key state machine: Trapped(policy) or Resolved(value).
// The only transition is Trapped -> Resolved, on first write. Trapped reads
// re-trigger the policy every time until that write happens.
type slot struct {
	trapped bool
	policy  trapPolicy
	value   Value
}

// Params is the asynchronously resolved root parameter mapping handed to
// application code. A settled Params exposes plain values; a Params produced
// during static generation may carry trapped placeholder keys whose first
// concrete read suspends or interrupts the render instead of returning a
// value; a hanging Params never settles until the render's abort signal
// fires.
type Params struct {
	route string
	keys  []string

	mu    sync.Mutex
	slots map[string]*slot

	hanging bool
	signal  *AbortSignal
	label   string

	signals  Signals
	scope    *Scope
	unit     Unit
	tracking *Tracking
}

func newResolvedParams(route string, ps *ParamSet) *Params {
	keys := ps.Keys()
	slots := make(map[string]*slot, len(keys))
	for _, key := range keys {
		value, _ := ps.Get(key)
		slots[key] = &slot{value: cloneValue(value)}
	}
	return &Params{
		route: route,
		keys:  keys,
		slots: slots,
	}
}

func newTrappedParams(scope *Scope, unit Unit, policy trapPolicy, signals Signals) *Params {
	ps := scope.Params()
	placeholders := scope.Placeholders()
	keys := ps.Keys()
	slots := make(map[string]*slot, len(keys))
	for _, key := range keys {
		value, _ := ps.Get(key)
		entry := &slot{value: cloneValue(value)}
		if placeholders.Has(key) {
			entry.trapped = true
			entry.policy = policy
		}
		slots[key] = entry
	}
	return &Params{
		route:    scope.Route(),
		keys:     keys,
		slots:    slots,
		signals:  signals,
		scope:    scope,
		unit:     unit,
		tracking: unitTracking(unit),
	}
}

func newHangingParams(signal *AbortSignal, label string) *Params {
	return &Params{
		hanging: true,
		signal:  signal,
		label:   label,
	}
}

// Route returns the route identifier the wrapper was resolved for.
func (p *Params) Route() string {
	return p.route
}

// Keys returns the parameter names in declaration order.
func (p *Params) Keys() []string {
	if len(p.keys) == 0 {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Has reports whether the wrapper carries key.
func (p *Params) Has(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.slots[key]
	return ok
}

// Settled reports whether the wrapper's values are available. Hanging
// wrappers never settle; they reject via Resolve once the render aborts.
func (p *Params) Settled() bool {
	return !p.hanging
}

// Label returns the debug label of a hanging wrapper, or "".
func (p *Params) Label() string {
	return p.label
}

// Get reads one parameter. Reading a trapped placeholder does not produce a
// value: depending on the render mode it returns a *SuspendedError or
// *InterruptedError that the caller must return immediately. Reading a
// hanging wrapper returns ErrPending; use Resolve to await it.
func (p *Params) Get(key string) (Value, error) {
	if p.hanging {
		return nil, ErrPending
	}
	p.mu.Lock()
	entry, ok := p.slots[key]
	if !ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownParam, key)
	}
	if entry.trapped {
		policy := entry.policy
		p.mu.Unlock()
		return nil, p.trigger(key, policy)
	}
	value := cloneValue(entry.value)
	p.mu.Unlock()
	return value, nil
}

// Set writes a parameter value. Writing a trapped placeholder downgrades it
// to an ordinary value slot, so subsequent reads return the written value
// without re-triggering suspension or interruption. The downgrade is
// one-shot; there is no transition back.
func (p *Params) Set(key string, value Value) error {
	if p.hanging {
		return ErrPending
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.slots[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParam, key)
	}
	entry.trapped = false
	entry.policy = trapNone
	entry.value = cloneValue(value)
	return nil
}

// Resolve awaits the whole mapping. For a hanging wrapper it blocks until
// the render's abort signal fires and then rejects with *RenderAbortedError;
// ctx cancellation is honored but the core imposes no timeout of its own.
// For a wrapper with trapped placeholders it triggers the first trapped key
// in declaration order, so no partial value is ever observable.
func (p *Params) Resolve(ctx context.Context) (map[string]Value, error) {
	if p.hanging {
		select {
		case <-p.signal.Done():
			return nil, &RenderAbortedError{Label: p.label, Cause: p.signal.Err()}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	for _, key := range p.keys {
		entry := p.slots[key]
		if entry.trapped {
			policy := entry.policy
			p.mu.Unlock()
			return nil, p.trigger(key, policy)
		}
	}
	out := p.valuesLocked()
	p.mu.Unlock()
	return out, nil
}

func (p *Params) trigger(key string, policy trapPolicy) error {
	expression := keyExpression(key)
	switch policy {
	case trapSuspend:
		return p.signals.Suspend(p.route, expression, p.tracking)
	case trapAbort:
		return p.signals.Interrupt(expression, p.scope, p.unit)
	default:
		return nil
	}
}

func (p *Params) valuesLocked() map[string]Value {
	out := make(map[string]Value, len(p.keys))
	for _, key := range p.keys {
		out[key] = cloneValue(p.slots[key].value)
	}
	return out
}

// snapshot returns the current values without triggering traps. Internal
// consumers only: constraint checking runs against fully known wrappers.
func (p *Params) snapshot() map[string]Value {
	if p.hanging {
		return map[string]Value{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.valuesLocked()
}
