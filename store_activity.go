package plotopts

import (
	"context"

	"github.com/goliatone/go-plotopts/pkg/activity"
)

// WithActivityHooks attaches lifecycle hooks to the store. Hooks observe
// backend registration, option registration, and resolution; hook failures
// never fail the operation that triggered them.
func WithActivityHooks(hooks activity.Hooks) StoreOption {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *storeConfig) {
		cfg.activityHooks = normalized
	}
}

// ActivityHooks returns a cloned slice of the hooks configured on the store.
// The returned slice can be safely mutated by the caller.
func (s *Store) ActivityHooks() activity.Hooks {
	if s == nil {
		return nil
	}
	return cloneActivityHooks(s.cfg.activityHooks)
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}

// emit fans the event out to configured hooks. Events fire after the store
// lock is released so hooks may call back into the store.
func (s *Store) emit(event activity.Event) {
	if s == nil || !s.cfg.activityHooks.Enabled() {
		return
	}
	_ = s.cfg.activityHooks.Notify(context.Background(), event)
}

func (s *Store) emitRegistered(scope Scope, snapshotID string, keys []string) {
	s.emit(activity.BuildRegisteredEvent(activity.EventInput{
		Scope:      scope.Identifier(),
		Backend:    scope.Backend,
		SnapshotID: snapshotID,
		Keys:       keys,
	}))
}

func (s *Store) emitResolved(e Element, backend string, keys []string) {
	s.emit(activity.BuildResolvedEvent(activity.EventInput{
		ObjectID: e.ID(),
		Scope:    e.Path(),
		Backend:  backend,
		Keys:     keys,
	}))
}

func (s *Store) emitBackendRegistered(name string, vocabSize int) {
	s.emit(activity.BuildBackendRegisteredEvent(activity.EventInput{
		ObjectID: name,
		Backend:  name,
		Metadata: map[string]any{"vocabulary_size": vocabSize},
	}))
}

func (s *Store) emitBackendActivated(name string) {
	s.emit(activity.BuildBackendActivatedEvent(activity.EventInput{
		ObjectID: name,
		Backend:  name,
	}))
}
