package state

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-rootparams/schema"
)

func TestRefIdentifier(t *testing.T) {
	ref := Ref{Route: "/[lang]", Kind: KindManifest}
	key, err := ref.Identifier()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "manifest//[lang]" {
		t.Fatalf("unexpected key: %q", key)
	}

	if _, err := (Ref{Kind: KindManifest}).Identifier(); err == nil {
		t.Fatalf("expected an error for a missing route")
	}
	if _, err := (Ref{Route: "/", Kind: "unknown"}).Identifier(); err == nil {
		t.Fatalf("expected an error for an unsupported kind")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore[schema.Manifest]()
	ref := Ref{Route: "/[lang]", Kind: KindManifest}
	ctx := context.Background()

	if _, _, ok, err := store.Load(ctx, ref); err != nil || ok {
		t.Fatalf("expected a miss on an empty store, got ok=%v err=%v", ok, err)
	}

	manifest := schema.Manifest{
		Route:  "/[lang]",
		Params: []schema.ParamSchema{{Name: "lang", Type: "string"}},
	}
	meta := Meta{ETag: "v1", Extra: map[string]string{"worker": "a"}}
	if _, err := store.Save(ctx, ref, manifest, meta); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	loaded, loadedMeta, ok, err := store.Load(ctx, ref)
	if err != nil || !ok {
		t.Fatalf("expected a hit, got ok=%v err=%v", ok, err)
	}
	if loaded.Route != "/[lang]" || len(loaded.Params) != 1 {
		t.Fatalf("unexpected record: %+v", loaded)
	}

	loadedMeta.Extra["worker"] = "b"
	if _, reloaded, _, _ := store.Load(ctx, ref); reloaded.Extra["worker"] != "a" {
		t.Fatalf("expected stored metadata isolated from caller mutation")
	}
}

func TestMutateMintsMetadata(t *testing.T) {
	store := NewMemoryStore[schema.Manifest]()
	ref := Ref{Route: "/[lang]", Kind: KindManifest}
	ctx := context.Background()

	record, meta, err := Mutate(ctx, store, ref, Meta{}, func(m *schema.Manifest) error {
		m.Route = "/[lang]"
		m.Params = append(m.Params, schema.ParamSchema{Name: "lang", Type: "string"})
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(record.Params) != 1 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if meta.SnapshotID == "" || meta.ETag == "" || meta.UpdatedAt.IsZero() {
		t.Fatalf("expected minted metadata, got %+v", meta)
	}
}

func TestMutateEnforcesETag(t *testing.T) {
	store := NewMemoryStore[schema.Manifest]()
	ref := Ref{Route: "/[lang]", Kind: KindShell}
	ctx := context.Background()

	_, meta, err := Mutate(ctx, store, ref, Meta{}, func(m *schema.Manifest) error {
		m.Route = "/[lang]"
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := Mutate(ctx, store, ref, Meta{ETag: "stale"}, func(m *schema.Manifest) error {
		return nil
	}); !errors.Is(err, ErrETagMismatch) {
		t.Fatalf("expected ErrETagMismatch, got %v", err)
	}

	if _, _, err := Mutate(ctx, store, ref, Meta{ETag: meta.ETag}, func(m *schema.Manifest) error {
		m.Params = nil
		return nil
	}); err != nil {
		t.Fatalf("expected the current etag to be accepted, got %v", err)
	}
}

func TestMutateSurfacesMutatorError(t *testing.T) {
	store := NewMemoryStore[schema.Manifest]()
	ref := Ref{Route: "/[lang]", Kind: KindManifest}
	boom := errors.New("bad manifest")

	if _, _, err := Mutate(context.Background(), store, ref, Meta{}, func(*schema.Manifest) error {
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected the mutator error surfaced, got %v", err)
	}
}
