// Package state defines persistence-facing contracts for loading and saving
// named sheet snapshots, plus a small editor that orchestrates load-edit-save
// rounds with optimistic concurrency.
//
// Responsibilities:
//   - Store[T] only loads/saves a single snapshot for a single Ref.
//   - Editor[T] applies a mutator to a loaded snapshot, runs the snapshot's
//     own validation when it implements Validator, and persists the result
//     under a fresh snapshot ID.
//   - The core plotopts package remains persistence-agnostic; all persistence
//     logic stays behind Store implementations supplied by consumers.
//
// Data flow:
//
//	Store -> Editor.Mutate(ref, meta, fn) -> Store.Save -> Meta{SnapshotID, ETag}
//
// Concurrency:
//
//	Meta.ETag implements optimistic locking. Pass the ETag observed on load;
//	Mutate rejects the save with ErrETagMismatch when the stored ETag moved.
//
// Deterministic keys:
//
//	Ref.Identifier() provides a canonical storage key (<collection>/<name>)
//	so file, KV, and SQL adapters address the same snapshot identically.
package state
