package plotopts

import (
	"errors"
	"reflect"
	"testing"
)

func matplotlibVocabulary() Vocabulary {
	return Vocabulary{
		"color":     {Kind: KindStyle},
		"linewidth": {Kind: KindStyle},
		"alpha":     {Kind: KindStyle},
		"cmap":      {Kind: KindStyle},
		"aspect":    {Kind: KindPlot},
		"width":     {Kind: KindPlot, Unsupported: true},
	}
}

func bokehVocabulary() Vocabulary {
	return Vocabulary{
		"color":     {Kind: KindStyle, Native: "line_color"},
		"linewidth": {Kind: KindStyle, Native: "line_width"},
		"alpha":     {Kind: KindStyle, Native: "line_alpha"},
		"width":     {Kind: KindPlot},
		"height":    {Kind: KindPlot},
	}
}

// newTestStore registers matplotlib then bokeh, leaving matplotlib active.
func newTestStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()
	store := NewStore(opts...)
	if err := store.RegisterBackend("matplotlib", matplotlibVocabulary()); err != nil {
		t.Fatalf("register matplotlib: %v", err)
	}
	if err := store.RegisterBackend("bokeh", bokehVocabulary()); err != nil {
		t.Fatalf("register bokeh: %v", err)
	}
	return store
}

func mustStyle(t *testing.T, values map[string]any) Options {
	t.Helper()
	bundle, err := Style(values)
	if err != nil {
		t.Fatalf("style bundle: %v", err)
	}
	return bundle
}

func mustPlot(t *testing.T, values map[string]any) Options {
	t.Helper()
	bundle, err := Plot(values)
	if err != nil {
		t.Fatalf("plot bundle: %v", err)
	}
	return bundle
}

func mustElement(t *testing.T, typ string, opts ...ElementOption) Element {
	t.Helper()
	el, err := NewElement(typ, opts...)
	if err != nil {
		t.Fatalf("element %q: %v", typ, err)
	}
	return el
}

func mustCycle(t *testing.T, values ...any) Cycle {
	t.Helper()
	cycle, err := NewCycle(values...)
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	return cycle
}

func mustScope(t *testing.T, path string) Scope {
	t.Helper()
	scope, err := ParseScope(path)
	if err != nil {
		t.Fatalf("scope %q: %v", path, err)
	}
	return scope
}

func TestRegisterBackendValidation(t *testing.T) {
	store := NewStore()

	if err := store.RegisterBackend("   ", matplotlibVocabulary()); !errors.Is(err, ErrBackendNameRequired) {
		t.Fatalf("expected ErrBackendNameRequired, got %v", err)
	}
	bad := Vocabulary{"color": {Kind: Kind("paint")}}
	if err := store.RegisterBackend("matplotlib", bad); !errors.Is(err, ErrKindInvalid) {
		t.Fatalf("expected ErrKindInvalid for bad vocabulary, got %v", err)
	}

	if err := store.RegisterBackend("matplotlib", matplotlibVocabulary()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Active(); got != "matplotlib" {
		t.Fatalf("expected first backend to become active, got %q", got)
	}

	if err := store.RegisterBackend("matplotlib", matplotlibVocabulary()); !errors.Is(err, ErrDuplicateBackend) {
		t.Fatalf("expected ErrDuplicateBackend, got %v", err)
	}
	if err := store.RegisterBackend("bokeh", bokehVocabulary()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Active(); got != "matplotlib" {
		t.Fatalf("expected active backend unchanged by later registrations, got %q", got)
	}
}

func TestRegisterBackendClonesVocabulary(t *testing.T) {
	store := NewStore()
	vocab := matplotlibVocabulary()
	if err := store.RegisterBackend("matplotlib", vocab); err != nil {
		t.Fatalf("register backend: %v", err)
	}

	vocab["color"] = VocabEntry{Kind: KindPlot}
	vocab["invented"] = VocabEntry{Kind: KindStyle}

	stored, err := store.Vocabulary("matplotlib")
	if err != nil {
		t.Fatalf("vocabulary: %v", err)
	}
	if entry, ok := stored.Entry("color"); !ok || entry.Kind != KindStyle {
		t.Fatalf("expected stored vocabulary isolated from caller mutation, got %+v", entry)
	}
	if stored.Recognizes("invented") {
		t.Fatalf("expected stored vocabulary to miss keys added after registration")
	}

	stored["color"] = VocabEntry{Kind: KindPlot}
	again, err := store.Vocabulary("matplotlib")
	if err != nil {
		t.Fatalf("vocabulary: %v", err)
	}
	if entry, _ := again.Entry("color"); entry.Kind != KindStyle {
		t.Fatalf("expected returned vocabulary to be a copy, got %+v", entry)
	}
}

func TestSetActiveSwitchesBackend(t *testing.T) {
	store := newTestStore(t)

	if err := store.SetActive("bokeh"); err != nil {
		t.Fatalf("set active: %v", err)
	}
	if got := store.Active(); got != "bokeh" {
		t.Fatalf("expected bokeh active, got %q", got)
	}

	if err := store.SetActive("plotly"); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
	if got := store.Active(); got != "bokeh" {
		t.Fatalf("expected failed activation to leave backend unchanged, got %q", got)
	}
}

func TestBackendsAndRecognizedUnion(t *testing.T) {
	store := newTestStore(t)

	if got := store.Backends(); !reflect.DeepEqual(got, []string{"bokeh", "matplotlib"}) {
		t.Fatalf("expected sorted backend names, got %v", got)
	}

	want := []string{"alpha", "aspect", "cmap", "color", "height", "linewidth", "width"}
	if got := store.Recognized(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected union %v, got %v", want, got)
	}

	if _, err := store.Vocabulary("plotly"); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestRegisterGuards(t *testing.T) {
	empty := NewStore()
	style := mustStyle(t, map[string]any{"color": "blue"})
	if err := empty.Register(ScopeForType("Curve"), style); !errors.Is(err, ErrNoBackends) {
		t.Fatalf("expected ErrNoBackends, got %v", err)
	}

	store := newTestStore(t)
	if err := store.Register(ScopeForType("Curve")); err == nil {
		t.Fatalf("expected error when registering without bundles")
	}
	if err := store.Register(Scope{ElementType: "Curve", Label: "Onset"}, style); !errors.Is(err, ErrLabelRequiresGroup) {
		t.Fatalf("expected ErrLabelRequiresGroup, got %v", err)
	}
	if err := store.Register(ScopeForType("Curve").ForBackend("plotly"), style); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend for qualifier, got %v", err)
	}
	if err := store.Register(ScopeForType("Curve"), Options{}); !errors.Is(err, ErrKindInvalid) {
		t.Fatalf("expected ErrKindInvalid for zero bundle, got %v", err)
	}
}

func TestRegisterRejectsUnrecognizedKeyword(t *testing.T) {
	store := newTestStore(t)

	err := store.Register(ScopeForType("Curve"), mustStyle(t, map[string]any{"wobble": 3}))
	if !errors.Is(err, ErrUnrecognizedOption) {
		t.Fatalf("expected ErrUnrecognizedOption, got %v", err)
	}

	var optErr *OptionError
	if !errors.As(err, &optErr) {
		t.Fatalf("expected OptionError, got %T", err)
	}
	if optErr.Option != "wobble" {
		t.Fatalf("expected option wobble, got %q", optErr.Option)
	}
	if optErr.Scope != "Curve" {
		t.Fatalf("expected scope Curve, got %q", optErr.Scope)
	}
	if optErr.Backend != "" {
		t.Fatalf("expected agnostic validation, got backend %q", optErr.Backend)
	}
	allowed := []string{"alpha", "cmap", "color", "linewidth"}
	if !reflect.DeepEqual(optErr.Allowed, allowed) {
		t.Fatalf("expected allowed %v, got %v", allowed, optErr.Allowed)
	}
}

func TestRegisterBackendQualifiedValidatesAgainstOneBackend(t *testing.T) {
	store := newTestStore(t)

	// cmap is a matplotlib style; under a bokeh qualifier it must be rejected.
	err := store.RegisterAt("Curve@bokeh", mustStyle(t, map[string]any{"cmap": "viridis"}))
	if !errors.Is(err, ErrUnrecognizedOption) {
		t.Fatalf("expected ErrUnrecognizedOption, got %v", err)
	}
	var optErr *OptionError
	if !errors.As(err, &optErr) {
		t.Fatalf("expected OptionError, got %T", err)
	}
	if optErr.Backend != "bokeh" {
		t.Fatalf("expected backend bokeh, got %q", optErr.Backend)
	}
	if !reflect.DeepEqual(optErr.Allowed, []string{"alpha", "color", "linewidth"}) {
		t.Fatalf("expected bokeh style names, got %v", optErr.Allowed)
	}

	if err := store.RegisterAt("Curve", mustStyle(t, map[string]any{"cmap": "viridis"})); err != nil {
		t.Fatalf("agnostic registration should accept cmap: %v", err)
	}
	if err := store.RegisterAt("Curve@bokeh", mustPlot(t, map[string]any{"width": 400})); err != nil {
		t.Fatalf("bokeh-qualified width should register: %v", err)
	}
}

func TestRegisterRejectsKindMismatch(t *testing.T) {
	store := newTestStore(t)

	// aspect is declared as a plot option everywhere.
	err := store.Register(ScopeForType("Curve"), mustStyle(t, map[string]any{"aspect": "square"}))
	if !errors.Is(err, ErrUnrecognizedOption) {
		t.Fatalf("expected ErrUnrecognizedOption for kind mismatch, got %v", err)
	}
	var optErr *OptionError
	if !errors.As(err, &optErr) {
		t.Fatalf("expected OptionError, got %T", err)
	}
	if !reflect.DeepEqual(optErr.Allowed, []string{"alpha", "cmap", "color", "linewidth"}) {
		t.Fatalf("expected style union in allowed list, got %v", optErr.Allowed)
	}

	if err := store.Register(ScopeForType("Curve"), mustPlot(t, map[string]any{"color": "blue"})); !errors.Is(err, ErrUnrecognizedOption) {
		t.Fatalf("expected ErrUnrecognizedOption for style keyword on plot bundle, got %v", err)
	}
}

func TestRegisterMergesAndRotatesSnapshot(t *testing.T) {
	store := newTestStore(t)
	scope := ScopeForType("Curve")

	if err := store.Register(scope, mustStyle(t, map[string]any{"color": "blue"})); err != nil {
		t.Fatalf("register: %v", err)
	}
	first, ok := store.SnapshotID(scope)
	if !ok || first == "" {
		t.Fatalf("expected snapshot id after registration, got %q ok=%v", first, ok)
	}

	if err := store.Register(scope, mustStyle(t, map[string]any{"color": "green", "linewidth": 2})); err != nil {
		t.Fatalf("register: %v", err)
	}
	second, _ := store.SnapshotID(scope)
	if second == first {
		t.Fatalf("expected snapshot id to rotate per registration")
	}

	bundles, ok := store.Lookup(scope)
	if !ok || len(bundles) != 1 {
		t.Fatalf("expected one merged style bundle, got %d ok=%v", len(bundles), ok)
	}
	if color, _ := bundles[0].Value("color"); color != "green" {
		t.Fatalf("expected newest color to win, got %v", color)
	}
	if width, _ := bundles[0].Value("linewidth"); width != 2 {
		t.Fatalf("expected merged linewidth, got %v", width)
	}

	if err := store.Register(scope, mustPlot(t, map[string]any{"aspect": "square"})); err != nil {
		t.Fatalf("register plot: %v", err)
	}
	bundles, _ = store.Lookup(scope)
	if len(bundles) != 2 {
		t.Fatalf("expected plot and style bundles, got %d", len(bundles))
	}
	if bundles[0].Kind() != KindPlot || bundles[1].Kind() != KindStyle {
		t.Fatalf("expected plot before style, got %v then %v", bundles[0].Kind(), bundles[1].Kind())
	}
}

func TestRegisterAlignsCyclesAcrossRegistrations(t *testing.T) {
	store := newTestStore(t)
	scope := ScopeForType("Curve")

	if err := store.Register(scope, mustStyle(t, map[string]any{"color": mustCycle(t, "blue", "green")})); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := store.Register(scope, mustStyle(t, map[string]any{"alpha": mustCycle(t, 0.2, 0.4, 0.6)}))
	if !errors.Is(err, ErrCycleLength) {
		t.Fatalf("expected ErrCycleLength across registrations, got %v", err)
	}

	// A different scope is free to carry its own cycle length.
	if err := store.Register(ScopeForType("Image"), mustStyle(t, map[string]any{"alpha": mustCycle(t, 0.2, 0.4, 0.6)})); err != nil {
		t.Fatalf("register independent scope: %v", err)
	}
}

func TestRegisterShortcuts(t *testing.T) {
	store := newTestStore(t)

	if err := store.RegisterAt("Curve.Stimulus.Onset", mustStyle(t, map[string]any{"color": "red"})); err != nil {
		t.Fatalf("register at: %v", err)
	}
	if _, ok := store.Lookup(mustScope(t, "Curve.Stimulus.Onset")); !ok {
		t.Fatalf("expected textual registration to be retrievable")
	}
	if err := store.RegisterAt("Curve..Onset", mustStyle(t, map[string]any{"color": "red"})); !errors.Is(err, ErrScopeInvalid) {
		t.Fatalf("expected ErrScopeInvalid, got %v", err)
	}

	el := mustElement(t, "Curve", WithGroup("Stimulus"), WithLabel("Onset Response"))
	if err := store.RegisterFor(el, mustStyle(t, map[string]any{"color": "purple"})); err != nil {
		t.Fatalf("register for element: %v", err)
	}
	if _, ok := store.Lookup(ScopeForElement(el)); !ok {
		t.Fatalf("expected element scope registration")
	}

	if err := store.RegisterForObject(el, mustStyle(t, map[string]any{"alpha": 0.5})); err != nil {
		t.Fatalf("register for object: %v", err)
	}
	object := ScopeForObject(el.ID())
	if _, ok := store.Lookup(object); !ok {
		t.Fatalf("expected object scope registration at %s", object)
	}
}

func TestScopesSortedByIdentifier(t *testing.T) {
	store := newTestStore(t)
	style := map[string]any{"color": "blue"}
	for _, path := range []string{"Image", "Curve@bokeh", "Curve.Curve.A", "Curve"} {
		if err := store.RegisterAt(path, mustStyle(t, style)); err != nil {
			t.Fatalf("register %q: %v", path, err)
		}
	}

	got := make([]string, 0, 4)
	for _, scope := range store.Scopes() {
		got = append(got, scope.Identifier())
	}
	want := []string{"Curve", "Curve.Curve.A", "Curve@bokeh", "Image"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLookupReturnsCopies(t *testing.T) {
	store := newTestStore(t)
	scope := ScopeForType("Curve")
	if err := store.Register(scope, mustStyle(t, map[string]any{"cmap": map[string]any{"space": "rgb"}})); err != nil {
		t.Fatalf("register: %v", err)
	}

	bundles, ok := store.Lookup(scope)
	if !ok {
		t.Fatalf("expected lookup to succeed")
	}
	values := bundles[0].Values()
	values["cmap"].(map[string]any)["space"] = "hsv"

	again, _ := store.Lookup(scope)
	value, _ := again[0].Value("cmap")
	if value.(map[string]any)["space"] != "rgb" {
		t.Fatalf("expected stored values isolated from caller mutation, got %v", value)
	}

	if _, ok := store.Lookup(ScopeForType("Histogram")); ok {
		t.Fatalf("expected lookup miss for unregistered scope")
	}
}
