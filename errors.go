package rootparams

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRenderScope indicates the resolver was invoked outside any render.
	// This is a programmer error: the entry points only make sense while the
	// render engine has installed a Scope on the context.
	ErrNoRenderScope = errors.New("rootparams: no active render scope")
	// ErrEmptyParamName indicates ParamSet construction received an unnamed
	// parameter.
	ErrEmptyParamName = errors.New("rootparams: parameter name must not be empty")
	// ErrDuplicateParam indicates ParamSet construction received the same key
	// twice.
	ErrDuplicateParam = errors.New("rootparams: parameter names must be unique")
	// ErrUnknownParam indicates a read or write of a key the wrapper does not
	// carry.
	ErrUnknownParam = errors.New("rootparams: unknown parameter")
	// ErrPending indicates a synchronous read of a wrapper that has not
	// settled. Hanging wrappers only settle once the render's abort signal
	// fires; use Resolve to await them.
	ErrPending = errors.New("rootparams: parameters have not settled")
)

// SuspendedError reports that the current static pass stopped at a dynamic
// data access and must be completed in a later pass with real data. Callers
// return it immediately; the render engine detects it with errors.As and
// schedules the resume.
type SuspendedError struct {
	Route      string
	Expression string
}

func (e *SuspendedError) Error() string {
	return fmt.Sprintf("rootparams: route %q suspended static rendering at %s", e.Route, e.Expression)
}

// InterruptedError reports that static generation was cancelled for the whole
// route and rendering must happen at request time. There is no partial retry:
// a single dynamic access invalidates the entire static shell.
type InterruptedError struct {
	Route      string
	Expression string
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("rootparams: route %q interrupted static generation at %s", e.Route, e.Expression)
}

// RenderAbortedError is the rejection produced when a hanging wrapper's abort
// signal fires. It unwraps to the cause recorded on the signal.
type RenderAbortedError struct {
	Label string
	Cause error
}

func (e *RenderAbortedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("rootparams: render aborted while awaiting %s", e.Label)
	}
	return fmt.Sprintf("rootparams: render aborted while awaiting %s: %v", e.Label, e.Cause)
}

func (e *RenderAbortedError) Unwrap() error {
	return e.Cause
}

// ConstraintError reports a configured root-param constraint that evaluated
// to a non-true result against fully known values.
type ConstraintError struct {
	Route      string
	Expression string
	Value      any
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("rootparams: route %q failed constraint %q (got %v)", e.Route, e.Expression, e.Value)
}
