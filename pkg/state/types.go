package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrETagMismatch = errors.New("state: etag mismatch")

// Ref identifies one persisted sheet snapshot within a collection.
type Ref struct {
	Collection string
	Name       string
}

// Identifier returns the canonical storage key for the reference.
func (r Ref) Identifier() (string, error) {
	if r.Collection == "" {
		return "", fmt.Errorf("state: collection is required")
	}
	if r.Name == "" {
		return "", fmt.Errorf("state: name is required")
	}
	return fmt.Sprintf("%s/%s", r.Collection, r.Name), nil
}

// Meta is storage-owned metadata used for trace/audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one snapshot for a single reference.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}

// Mutator edits a snapshot in place.
type Mutator[T any] func(*T) error

// Validator lets snapshot types veto a save during Mutate.
type Validator interface {
	Validate() error
}

// Editor orchestrates load-edit-save rounds against a Store with optimistic
// concurrency. Every successful Mutate writes a fresh snapshot ID unless the
// caller supplies one.
type Editor[T any] struct {
	Store Store[T]
}

// Get loads the snapshot behind ref.
func (e Editor[T]) Get(ctx context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	if e.Store == nil {
		return zero, Meta{}, false, fmt.Errorf("state: store is required")
	}
	snapshot, meta, ok, err := e.Store.Load(ctx, ref)
	if err != nil {
		return zero, Meta{}, false, fmt.Errorf("state: load %s/%s: %w", ref.Collection, ref.Name, err)
	}
	return snapshot, meta, ok, nil
}

// Mutate loads ref, applies fn, validates when the snapshot implements
// Validator, then saves. When meta carries an ETag it must match the stored
// one or the save is rejected with ErrETagMismatch.
func (e Editor[T]) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator[T]) (T, Meta, error) {
	var zero T
	if e.Store == nil {
		return zero, Meta{}, fmt.Errorf("state: store is required")
	}
	if fn == nil {
		return zero, Meta{}, fmt.Errorf("state: mutator is required")
	}

	snapshot, loadedMeta, ok, err := e.Store.Load(ctx, ref)
	if err != nil {
		return zero, Meta{}, fmt.Errorf("state: load %s/%s: %w", ref.Collection, ref.Name, err)
	}
	if !ok {
		snapshot = zero
		loadedMeta = Meta{}
	}

	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return zero, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	if err := fn(&snapshot); err != nil {
		return zero, loadedMeta, err
	}

	if validator, hasValidate := any(snapshot).(Validator); hasValidate {
		if err := validator.Validate(); err != nil {
			return zero, loadedMeta, err
		}
	}

	saveMeta := mergeMeta(loadedMeta, meta)
	if meta.SnapshotID == "" {
		saveMeta.SnapshotID = uuid.NewString()
	}
	if meta.ETag == "" {
		saveMeta.ETag = saveMeta.SnapshotID
	}
	if meta.UpdatedAt.IsZero() {
		saveMeta.UpdatedAt = time.Now()
	}

	savedMeta, err := e.Store.Save(ctx, ref, snapshot, saveMeta)
	if err != nil {
		return zero, loadedMeta, fmt.Errorf("state: save %s/%s: %w", ref.Collection, ref.Name, err)
	}
	return snapshot, savedMeta, nil
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
