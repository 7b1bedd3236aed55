package plotopts

import (
	"fmt"
	"sort"
	"time"

	layering "github.com/goliatone/go-plotopts/layering"
)

// Resolution holds the effective options for one element under one backend.
// Plot keeps abstract names; Style keys are the backend's native names.
type Resolution struct {
	Element Element
	Backend string
	Plot    map[string]any
	Style   map[string]any
}

// StyleAt materializes the style options for overlay position i, replacing
// each cycle with its value at that position.
func (r Resolution) StyleAt(i int) map[string]any {
	if len(r.Style) == 0 {
		return nil
	}
	out := make(map[string]any, len(r.Style))
	for key, value := range r.Style {
		if cycle, ok := value.(Cycle); ok {
			out[key] = cycle.At(i)
			continue
		}
		out[key] = layering.Clone(value)
	}
	return out
}

// ResolveOption configures a single resolution call.
type ResolveOption func(*resolveConfig)

type resolveConfig struct {
	backend  string
	index    int
	now      *time.Time
	args     map[string]any
	metadata map[string]any
}

// ResolveWithBackend resolves against the named backend instead of the
// active one.
func ResolveWithBackend(name string) ResolveOption {
	return func(cfg *resolveConfig) {
		cfg.backend = name
	}
}

// ResolveAtIndex sets the overlay position exposed to option expressions.
func ResolveAtIndex(i int) ResolveOption {
	return func(cfg *resolveConfig) {
		cfg.index = i
	}
}

// ResolveWithNow pins the timestamp exposed to option expressions.
func ResolveWithNow(t time.Time) ResolveOption {
	return func(cfg *resolveConfig) {
		cfg.now = &t
	}
}

// ResolveWithArgs supplies caller arguments to option expressions.
func ResolveWithArgs(args map[string]any) ResolveOption {
	return func(cfg *resolveConfig) {
		cfg.args = args
	}
}

// ResolveWithMetadata supplies auxiliary metadata to option expressions.
func ResolveWithMetadata(metadata map[string]any) ResolveOption {
	return func(cfg *resolveConfig) {
		cfg.metadata = metadata
	}
}

// Resolve computes the effective options for e: every registered scope
// matching the element is merged in ascending specificity, the result is
// split into plot and style options, and style names are translated to the
// backend's native vocabulary. Options the backend does not recognize are
// dropped silently; they were validated against the full set of backends at
// registration.
func (s *Store) Resolve(e Element, opts ...ResolveOption) (Resolution, error) {
	res, _, err := s.resolve(e, false, opts)
	return res, err
}

// ResolveWithTrace resolves like Resolve and additionally reports, per
// effective option, which scope supplied the winning value and which scopes
// were overridden.
func (s *Store) ResolveWithTrace(e Element, opts ...ResolveOption) (Resolution, []Trace, error) {
	return s.resolve(e, true, opts)
}

// ResolveOverlay resolves every element of the overlay with its position
// exposed to expressions. Cycle values stay cyclic; use StyleAt with the
// element's position to materialize them.
func (s *Store) ResolveOverlay(o Overlay, opts ...ResolveOption) ([]Resolution, error) {
	resolutions := make([]Resolution, 0, o.Len())
	for i, el := range o.Elements() {
		callOpts := make([]ResolveOption, 0, len(opts)+1)
		callOpts = append(callOpts, opts...)
		callOpts = append(callOpts, ResolveAtIndex(i))
		res, err := s.Resolve(el, callOpts...)
		if err != nil {
			return nil, fmt.Errorf("overlay position %d: %w", i, err)
		}
		resolutions = append(resolutions, res)
	}
	return resolutions, nil
}

// chainLink carries one matching registration out of the store lock.
type chainLink struct {
	scope      Scope
	snapshotID string
	bundles    map[Kind]map[string]any
}

func (s *Store) resolve(e Element, traced bool, opts []ResolveOption) (Resolution, []Trace, error) {
	cfg := resolveConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	s.mu.RLock()
	backend := cfg.backend
	if backend == "" {
		backend = s.active
	}
	if backend == "" {
		s.mu.RUnlock()
		return Resolution{}, nil, ErrNoActiveBackend
	}
	vocab, ok := s.backends[backend]
	if !ok {
		s.mu.RUnlock()
		return Resolution{}, nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
	vocab = vocab.clone()
	chain := s.chainLocked(e, backend)
	s.mu.RUnlock()

	// Ascending chain: each link overrides everything merged before it.
	merged := map[Kind]map[string]any{}
	for _, link := range chain {
		for kind, values := range link.bundles {
			merged[kind] = layering.MergeLayers(values, merged[kind])
		}
	}

	evalCtx := EvalContext{
		Element:  e,
		Backend:  backend,
		Index:    cfg.index,
		Now:      cfg.now,
		Args:     cfg.args,
		Metadata: cfg.metadata,
	}

	res := Resolution{
		Element: e,
		Backend: backend,
		Plot:    map[string]any{},
		Style:   map[string]any{},
	}
	effective := map[Kind][]string{}
	for kind, values := range merged {
		for key, value := range values {
			entry, known := vocab.Entry(key)
			if !known || entry.Kind != kind || entry.Unsupported {
				// Recognized by some other backend only: drop, do not error.
				continue
			}
			evaluated, err := s.evaluateValue(evalCtx, key, value)
			if err != nil {
				return Resolution{}, nil, err
			}
			switch kind {
			case KindPlot:
				res.Plot[key] = evaluated
			case KindStyle:
				res.Style[vocab.NativeName(key)] = evaluated
			}
			effective[kind] = append(effective[kind], key)
		}
	}

	var traces []Trace
	if traced {
		traces = buildTraces(chain, effective)
	}

	s.emitResolved(e, backend, effectiveKeys(effective))
	return res, traces, nil
}

// chainLocked collects the registrations matching e under backend, ordered
// by ascending specificity. Bundles are cloned so the lock can be dropped
// before merging. Callers must hold at least a read lock.
func (s *Store) chainLocked(e Element, backend string) []chainLink {
	links := make([]chainLink, 0, len(s.entries))
	for _, reg := range s.entries {
		if !reg.scope.Matches(e, backend) {
			continue
		}
		bundles := make(map[Kind]map[string]any, len(reg.bundles))
		for kind, values := range reg.bundles {
			bundles[kind] = layering.Clone(values)
		}
		links = append(links, chainLink{
			scope:      reg.scope,
			snapshotID: reg.snapshotID,
			bundles:    bundles,
		})
	}
	sort.Slice(links, func(i, j int) bool {
		si, sj := links[i].scope.Specificity(), links[j].scope.Specificity()
		if si == sj {
			return links[i].scope.Identifier() < links[j].scope.Identifier()
		}
		return si < sj
	})
	return links
}

// evaluateValue walks a resolved value, replacing Expr leaves with their
// evaluation result. Cycles are rebuilt so expression items resolve per
// position while the cycle itself stays cyclic.
func (s *Store) evaluateValue(ctx EvalContext, option string, value any) (any, error) {
	switch v := value.(type) {
	case Expr:
		return s.evaluateExpr(ctx, option, string(v))
	case Cycle:
		values := v.Values()
		for i, item := range values {
			evaluated, err := s.evaluateValue(ctx, option, item)
			if err != nil {
				return nil, err
			}
			values[i] = evaluated
		}
		return Cycle{values: values}, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			evaluated, err := s.evaluateValue(ctx, option, item)
			if err != nil {
				return nil, err
			}
			out[key] = evaluated
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			evaluated, err := s.evaluateValue(ctx, option, item)
			if err != nil {
				return nil, err
			}
			out[i] = evaluated
		}
		return out, nil
	default:
		return value, nil
	}
}

func buildTraces(chain []chainLink, effective map[Kind][]string) []Trace {
	var traces []Trace
	for kind, keys := range effective {
		for _, key := range keys {
			path := string(kind) + "." + key
			trace := Trace{Path: path}
			// Strongest first, so the winner leads the provenance list.
			for i := len(chain) - 1; i >= 0; i-- {
				link := chain[i]
				value, found := link.bundles[kind][key]
				trace.Layers = append(trace.Layers, Provenance{
					Scope:      link.scope,
					SnapshotID: link.snapshotID,
					Path:       path,
					Value:      value,
					Found:      found,
				})
			}
			traces = append(traces, trace)
		}
	}
	sort.Slice(traces, func(i, j int) bool {
		return traces[i].Path < traces[j].Path
	})
	return traces
}

func effectiveKeys(effective map[Kind][]string) []string {
	var keys []string
	for _, kindKeys := range effective {
		keys = append(keys, kindKeys...)
	}
	sort.Strings(keys)
	return keys
}
