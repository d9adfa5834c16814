package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrETagMismatch = errors.New("state: etag mismatch")

// Record kinds the build system persists per route.
const (
	KindManifest = "manifest"
	KindShell    = "shell"
)

// Ref identifies one persisted build record for one route.
type Ref struct {
	Route string
	Kind  string
}

// Identifier returns the deterministic storage key for the reference.
func (r Ref) Identifier() (string, error) {
	if r.Route == "" {
		return "", fmt.Errorf("state: route is required")
	}
	switch r.Kind {
	case KindManifest, KindShell:
		return fmt.Sprintf("%s/%s", r.Kind, r.Route), nil
	default:
		return "", fmt.Errorf("state: unsupported record kind %q", r.Kind)
	}
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one record for a single route reference.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (record T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, record T, meta Meta) (Meta, error)
}

// Mutator applies an in-place change to a loaded record.
type Mutator[T any] func(*T) error

// Mutate loads ref's record, applies fn, and saves the result. When the
// caller supplies an ETag it must match the stored one or the save is
// rejected with ErrETagMismatch. Each successful save mints a fresh
// snapshot id and ETag and stamps UpdatedAt.
func Mutate[T any](ctx context.Context, store Store[T], ref Ref, meta Meta, fn Mutator[T]) (T, Meta, error) {
	var zero T
	if store == nil {
		return zero, Meta{}, fmt.Errorf("state: store is required")
	}
	if fn == nil {
		return zero, Meta{}, fmt.Errorf("state: mutator is required")
	}
	if _, err := ref.Identifier(); err != nil {
		return zero, Meta{}, err
	}

	record, loadedMeta, ok, err := store.Load(ctx, ref)
	if err != nil {
		return zero, Meta{}, fmt.Errorf("state: load %q for route %q: %w", ref.Kind, ref.Route, err)
	}
	if !ok {
		record = zero
		loadedMeta = Meta{}
	}

	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return zero, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	if err := fn(&record); err != nil {
		return zero, loadedMeta, err
	}

	saveMeta := mergeMeta(loadedMeta, meta)
	saveMeta.SnapshotID = uuid.NewString()
	saveMeta.ETag = uuid.NewString()
	saveMeta.UpdatedAt = time.Now()
	savedMeta, err := store.Save(ctx, ref, record, saveMeta)
	if err != nil {
		return zero, loadedMeta, fmt.Errorf("state: save %q for route %q: %w", ref.Kind, ref.Route, err)
	}
	return record, savedMeta, nil
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
