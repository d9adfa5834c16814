package rootparams

import (
	"errors"
	"sync"
	"time"
)

// UnitKind tags the render pass variants.
type UnitKind string

const (
	// UnitDynamicPrerender is a static prerender that may leave branches
	// hanging on unresolved data, to be completed in a later pass.
	UnitDynamicPrerender UnitKind = "dynamic-prerender"
	// UnitPartialPrerender mixes statically generated and dynamically
	// completed fragments within one shell.
	UnitPartialPrerender UnitKind = "partial-prerender"
	// UnitLegacyPrerender is all-or-nothing static generation: any dynamic
	// access forces the whole route back to request-time rendering.
	UnitLegacyPrerender UnitKind = "legacy-prerender"
)

// Unit describes the render pass currently executing. A nil Unit means a
// plain dynamic request, where every value is computed at request time.
type Unit interface {
	Kind() UnitKind
}

// DynamicPrerender carries the abort signal that terminates hanging branches.
type DynamicPrerender struct {
	Signal *AbortSignal
}

// Kind implements Unit.
func (*DynamicPrerender) Kind() UnitKind { return UnitDynamicPrerender }

// PartialPrerender carries the tracking handle the suspend primitive records
// dynamic accesses into.
type PartialPrerender struct {
	Tracking *Tracking
}

// Kind implements Unit.
func (*PartialPrerender) Kind() UnitKind { return UnitPartialPrerender }

// LegacyPrerender carries the tracking handle the abort primitive records
// dynamic accesses into.
type LegacyPrerender struct {
	Tracking *Tracking
}

// Kind implements Unit.
func (*LegacyPrerender) Kind() UnitKind { return UnitLegacyPrerender }

func unitLabel(unit Unit) string {
	if unit == nil {
		return "request"
	}
	return string(unit.Kind())
}

func unitTracking(unit Unit) *Tracking {
	switch u := unit.(type) {
	case *PartialPrerender:
		return u.Tracking
	case *LegacyPrerender:
		return u.Tracking
	default:
		return nil
	}
}

// ErrRenderAborted is the default cause recorded when an AbortSignal fires
// without an explicit one.
var ErrRenderAborted = errors.New("rootparams: render aborted")

// AbortSignal notifies prerender branches that the render has been aborted.
// It fires at most once.
type AbortSignal struct {
	once sync.Once
	done chan struct{}

	mu  sync.Mutex
	err error
}

// NewAbortSignal constructs an unfired signal.
func NewAbortSignal() *AbortSignal {
	return &AbortSignal{done: make(chan struct{})}
}

// Abort fires the signal with cause. Subsequent calls are no-ops.
func (s *AbortSignal) Abort(cause error) {
	s.once.Do(func() {
		if cause == nil {
			cause = ErrRenderAborted
		}
		s.mu.Lock()
		s.err = cause
		s.mu.Unlock()
		close(s.done)
	})
}

// Done returns a channel closed once the signal fires.
func (s *AbortSignal) Done() <-chan struct{} {
	return s.done
}

// Err returns the cause the signal fired with, or nil while unfired.
func (s *AbortSignal) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// DynamicAccess records one dynamic data access observed while producing a
// static shell.
type DynamicAccess struct {
	Route      string
	Expression string
	OccurredAt time.Time
}

// Tracking accumulates the dynamic accesses observed during one prerender
// pass. The render engine inspects it after the pass to decide which
// fragments need request-time completion.
type Tracking struct {
	mu       sync.Mutex
	accesses []DynamicAccess
}

// NewTracking constructs an empty tracking handle.
func NewTracking() *Tracking {
	return &Tracking{}
}

// Record appends one access.
func (t *Tracking) Record(route, expression string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.accesses = append(t.accesses, DynamicAccess{
		Route:      route,
		Expression: expression,
		OccurredAt: time.Now(),
	})
}

// Accesses returns a copy of the recorded accesses.
func (t *Tracking) Accesses() []DynamicAccess {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.accesses) == 0 {
		return nil
	}
	out := make([]DynamicAccess, len(t.accesses))
	copy(out, t.accesses)
	return out
}

// Len returns the number of recorded accesses.
func (t *Tracking) Len() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.accesses)
}
