package hydrate

import (
	"errors"
	"testing"
)

func TestNormalizeAcceptsStringsAndSlices(t *testing.T) {
	value, err := Normalize("en")
	if err != nil || value != "en" {
		t.Fatalf("unexpected result: %v, %v", value, err)
	}

	value, err = Normalize([]string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if segments := value.([]string); len(segments) != 2 || segments[1] != "b" {
		t.Fatalf("unexpected slice: %v", segments)
	}

	value, err = Normalize([]any{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if segments := value.([]string); segments[0] != "a" {
		t.Fatalf("expected []any of strings coerced, got %v", segments)
	}
}

func TestNormalizeRejectsOtherTypes(t *testing.T) {
	if _, err := Normalize(42); !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("expected ErrUnsupportedValue, got %v", err)
	}
	if _, err := Normalize([]any{"a", 1}); !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("expected ErrUnsupportedValue for mixed slices, got %v", err)
	}
}

func TestNormalizeDetachesInput(t *testing.T) {
	source := []string{"a", "b"}
	value, err := Normalize(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	source[0] = "mutated"
	if value.([]string)[0] != "a" {
		t.Fatalf("expected the normalized slice detached from the input")
	}
}

func TestNormalizeMap(t *testing.T) {
	out, err := NormalizeMap(map[string]any{
		"lang": "en",
		"rest": []any{"docs"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["lang"] != "en" {
		t.Fatalf("unexpected lang: %v", out["lang"])
	}
	if out["rest"].([]string)[0] != "docs" {
		t.Fatalf("unexpected rest: %v", out["rest"])
	}

	if _, err := NormalizeMap(map[string]any{"n": 1}); err == nil {
		t.Fatalf("expected an error for unsupported values")
	}

	out, err = NormalizeMap(nil)
	if err != nil || len(out) != 0 {
		t.Fatalf("expected nil input to yield an empty map, got %v, %v", out, err)
	}
}
