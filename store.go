package plotopts

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	layering "github.com/goliatone/go-plotopts/layering"
	"github.com/google/uuid"
)

// Store is the option registry: backend vocabularies plus option bundles
// keyed by scope. Stores are explicit values injected where needed; there is
// no package-level registry. Mutation locks the store, reads run in parallel,
// and every returned map or slice is a fresh copy.
type Store struct {
	mu  sync.RWMutex
	cfg storeConfig

	backends map[string]Vocabulary
	active   string
	entries  map[string]*registration
}

// registration holds the accumulated bundles for one scope. Bundles merge
// across registrations with the newest values winning.
type registration struct {
	scope      Scope
	bundles    map[Kind]map[string]any
	snapshotID string
}

// NewStore builds an empty store. Without WithEvaluator the expr engine is
// used for expression-valued options, sharing the configured program cache
// and function registry.
func NewStore(opts ...StoreOption) *Store {
	cfg := applyStoreOptions(opts)
	if cfg.evaluator == nil {
		var exprOpts []ExprEvaluatorOption
		if cfg.programCache != nil {
			exprOpts = append(exprOpts, ExprWithProgramCache(cfg.programCache))
		}
		if cfg.functions != nil {
			exprOpts = append(exprOpts, ExprWithFunctionRegistry(cfg.functions))
		}
		cfg.evaluator = NewExprEvaluator(exprOpts...)
	}
	return &Store{
		cfg:      cfg,
		backends: map[string]Vocabulary{},
		entries:  map[string]*registration{},
	}
}

// RegisterBackend declares a backend's capability table. The first backend
// registered becomes active.
func (s *Store) RegisterBackend(name string, vocab Vocabulary) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBackendNameRequired
	}
	if err := vocab.Validate(); err != nil {
		return fmt.Errorf("backend %q: %w", name, err)
	}

	s.mu.Lock()
	if s.backends == nil {
		s.backends = map[string]Vocabulary{}
	}
	if _, exists := s.backends[name]; exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateBackend, name)
	}
	s.backends[name] = vocab.clone()
	if s.active == "" {
		s.active = name
	}
	s.mu.Unlock()

	s.emitBackendRegistered(name, len(vocab))
	return nil
}

// SetActive switches the backend resolution defaults to.
func (s *Store) SetActive(name string) error {
	name = strings.TrimSpace(name)
	s.mu.Lock()
	if _, ok := s.backends[name]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
	s.active = name
	s.mu.Unlock()

	s.emitBackendActivated(name)
	return nil
}

// Active returns the active backend name, empty before any registration.
func (s *Store) Active() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Backends returns the registered backend names sorted alphabetically.
func (s *Store) Backends() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.backends))
	for name := range s.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Vocabulary returns a copy of the named backend's capability table.
func (s *Store) Vocabulary(name string) (Vocabulary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vocab, ok := s.backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
	return vocab.clone(), nil
}

// Recognized returns the union of abstract option names across every
// registered backend, sorted alphabetically.
func (s *Store) Recognized() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unionNamesLocked("")
}

// Register validates bundles against the registered vocabularies and merges
// them into the scope's existing registration, newest values winning. A
// keyword unknown to every backend fails with an OptionError; for
// backend-qualified scopes validation runs against that backend alone.
func (s *Store) Register(scope Scope, bundles ...Options) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if len(bundles) == 0 {
		return fmt.Errorf("plotopts: register requires at least one bundle")
	}

	var registered []string
	var snapshotID string

	s.mu.Lock()
	err := func() error {
		if len(s.backends) == 0 {
			return ErrNoBackends
		}
		if scope.Backend != "" {
			if _, ok := s.backends[scope.Backend]; !ok {
				return fmt.Errorf("%w: %s", ErrUnknownBackend, scope.Backend)
			}
		}

		for _, bundle := range bundles {
			if !bundle.kind.valid() {
				return fmt.Errorf("%w: %q", ErrKindInvalid, bundle.kind)
			}
			for _, key := range bundle.Keys() {
				if err := s.validateKeywordLocked(scope, bundle.kind, key); err != nil {
					return err
				}
			}
		}

		key := scope.Identifier()
		current := s.entries[key]
		next := map[Kind]map[string]any{}
		if current != nil {
			for kind, values := range current.bundles {
				next[kind] = layering.Clone(values)
			}
		}
		for _, bundle := range bundles {
			merged := layering.MergeLayers(bundle.values, next[bundle.kind])
			if err := validateCycleLengths(merged); err != nil {
				return err
			}
			next[bundle.kind] = merged
			registered = append(registered, bundle.Keys()...)
		}

		snapshotID = uuid.NewString()
		s.entries[key] = &registration{
			scope:      scope,
			bundles:    next,
			snapshotID: snapshotID,
		}
		return nil
	}()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.emitRegistered(scope, snapshotID, registered)
	return nil
}

// RegisterAt registers bundles at the textual scope form, e.g.
// "Curve.Stimulus.Onset" or "Curve@bokeh".
func (s *Store) RegisterAt(path string, bundles ...Options) error {
	scope, err := ParseScope(path)
	if err != nil {
		return err
	}
	return s.Register(scope, bundles...)
}

// RegisterFor registers bundles at the element's most specific structural
// scope (type, group, and label when present).
func (s *Store) RegisterFor(e Element, bundles ...Options) error {
	return s.Register(ScopeForElement(e), bundles...)
}

// RegisterForObject registers bundles against the element's identity alone,
// styling that object and no other.
func (s *Store) RegisterForObject(e Element, bundles ...Options) error {
	return s.Register(ScopeForObject(e.ID()), bundles...)
}

// Lookup returns the bundles registered at exactly scope, plot before style.
func (s *Store) Lookup(scope Scope) ([]Options, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[scope.Identifier()]
	if !ok {
		return nil, false
	}
	out := make([]Options, 0, len(e.bundles))
	for _, kind := range []Kind{KindPlot, KindStyle} {
		if values, ok := e.bundles[kind]; ok {
			out = append(out, Options{kind: kind, values: layering.Clone(values)})
		}
	}
	return out, true
}

// Scopes returns every registered scope sorted by identifier.
func (s *Store) Scopes() []Scope {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	scopes := make([]Scope, 0, len(s.entries))
	for _, e := range s.entries {
		scopes = append(scopes, e.scope)
	}
	sort.Slice(scopes, func(i, j int) bool {
		return scopes[i].Identifier() < scopes[j].Identifier()
	})
	return scopes
}

// SnapshotID returns the identifier stamped on the scope's latest
// registration.
func (s *Store) SnapshotID(scope Scope) (string, bool) {
	if s == nil {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[scope.Identifier()]
	if !ok {
		return "", false
	}
	return e.snapshotID, true
}

// validateKeywordLocked checks one keyword of one bundle kind against the
// vocabularies. Backend-qualified scopes validate against their backend;
// agnostic scopes accept any keyword at least one backend recognizes.
func (s *Store) validateKeywordLocked(scope Scope, kind Kind, key string) error {
	if scope.Backend != "" {
		vocab := s.backends[scope.Backend]
		if entry, ok := vocab.Entry(key); ok && entry.Kind == kind {
			return nil
		}
		return newOptionError(key, scope.Identifier(), scope.Backend, vocab.NamesOf(kind))
	}
	for _, vocab := range s.backends {
		if entry, ok := vocab.Entry(key); ok && entry.Kind == kind {
			return nil
		}
	}
	return newOptionError(key, scope.Identifier(), "", s.unionNamesLocked(kind))
}

// unionNamesLocked returns the union of recognized names, filtered to kind
// when non-empty. Callers must hold at least a read lock.
func (s *Store) unionNamesLocked(kind Kind) []string {
	seen := map[string]struct{}{}
	for _, vocab := range s.backends {
		for name, entry := range vocab {
			if kind != "" && entry.Kind != kind {
				continue
			}
			seen[name] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
