package rootparams

import (
	"context"
	"errors"
	"testing"
)

func newResolvedTestParams(t *testing.T) *Params {
	t.Helper()
	set, err := NewParamSet(
		Param{Key: "lang", Value: "en"},
		Param{Key: "rest", Value: []string{"a", "b"}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return newResolvedParams("/[lang]/[...rest]", set)
}

func TestParamsGetUnknownKey(t *testing.T) {
	params := newResolvedTestParams(t)
	if _, err := params.Get("missing"); !errors.Is(err, ErrUnknownParam) {
		t.Fatalf("expected ErrUnknownParam, got %v", err)
	}
	if err := params.Set("missing", "x"); !errors.Is(err, ErrUnknownParam) {
		t.Fatalf("expected ErrUnknownParam on write, got %v", err)
	}
}

func TestParamsKeysDeclarationOrder(t *testing.T) {
	params := newResolvedTestParams(t)
	keys := params.Keys()
	if len(keys) != 2 || keys[0] != "lang" || keys[1] != "rest" {
		t.Fatalf("unexpected key order: %v", keys)
	}
	if !params.Has("lang") || params.Has("missing") {
		t.Fatalf("unexpected Has results")
	}
}

func TestParamsSliceValuesAreDetached(t *testing.T) {
	params := newResolvedTestParams(t)
	value, err := params.Get("rest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	segments, ok := value.([]string)
	if !ok {
		t.Fatalf("expected []string, got %T", value)
	}
	segments[0] = "mutated"

	again, err := params.Get("rest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.([]string)[0] != "a" {
		t.Fatalf("expected stored slice to be isolated from caller mutation")
	}
}

func TestHangingParamsRejectsDirectAccess(t *testing.T) {
	signal := NewAbortSignal()
	params := newHangingParams(signal, "rootparams.Resolve() for route \"/[lang]\"")

	if params.Settled() {
		t.Fatalf("expected hanging wrapper to be unsettled")
	}
	if _, err := params.Get("lang"); !errors.Is(err, ErrPending) {
		t.Fatalf("expected ErrPending on Get, got %v", err)
	}
	if err := params.Set("lang", "en"); !errors.Is(err, ErrPending) {
		t.Fatalf("expected ErrPending on Set, got %v", err)
	}
	if params.Label() == "" {
		t.Fatalf("expected a debug label")
	}

	signal.Abort(nil)
	_, err := params.Resolve(context.Background())
	var aborted *RenderAbortedError
	if !errors.As(err, &aborted) {
		t.Fatalf("expected *RenderAbortedError, got %v", err)
	}
	if !errors.Is(err, ErrRenderAborted) {
		t.Fatalf("expected the default abort cause, got %v", aborted.Cause)
	}
	if aborted.Label != params.Label() {
		t.Fatalf("expected the label carried through, got %q", aborted.Label)
	}
}
