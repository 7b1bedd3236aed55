package plotopts

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/goliatone/go-plotopts/pkg/activity"
)

func TestWithActivityHooksClonesAndFiltersNil(t *testing.T) {
	hook := activity.HookFunc(func(context.Context, activity.Event) error { return nil })

	store := NewStore(WithActivityHooks(activity.Hooks{nil, hook}))
	hooks := store.ActivityHooks()
	if len(hooks) != 1 {
		t.Fatalf("expected 1 hook, got %d", len(hooks))
	}

	// Mutate returned slice and ensure original configuration is unaffected.
	hooks[0] = nil
	again := store.ActivityHooks()
	if len(again) != 1 || again[0] == nil {
		t.Fatalf("expected cloned hooks unaffected by mutation, got %+v", again)
	}
}

func TestActivityHooksDefaultNil(t *testing.T) {
	store := NewStore()
	if hooks := store.ActivityHooks(); hooks != nil {
		t.Fatalf("expected nil hooks by default, got %+v", hooks)
	}
}

func TestStoreEmitsLifecycleEvents(t *testing.T) {
	capture := &activity.CaptureHook{}
	store := newTestStore(t, WithActivityHooks(activity.Hooks{capture}))

	if err := store.SetActive("bokeh"); err != nil {
		t.Fatalf("set active: %v", err)
	}
	curve := mustScope(t, "Curve")
	if err := store.Register(curve,
		mustStyle(t, map[string]any{"color": "blue", "alpha": 0.5}),
		mustPlot(t, map[string]any{"aspect": "square"}),
	); err != nil {
		t.Fatalf("register: %v", err)
	}
	el := mustElement(t, "Curve")
	if _, err := store.Resolve(el); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	events := capture.Captured()
	verbs := make([]string, 0, len(events))
	for _, event := range events {
		verbs = append(verbs, event.Verb)
	}
	wantVerbs := []string{
		"backend.registered",
		"backend.registered",
		"backend.activated",
		"options.registered",
		"options.resolved",
	}
	if !reflect.DeepEqual(verbs, wantVerbs) {
		t.Fatalf("expected %v, got %v", wantVerbs, verbs)
	}

	registered := events[0]
	if registered.ObjectType != "backend" || registered.ObjectID != "matplotlib" {
		t.Fatalf("unexpected backend registration event: %+v", registered)
	}
	if registered.Metadata["vocabulary_size"] != 6 {
		t.Fatalf("expected vocabulary size metadata, got %+v", registered.Metadata)
	}
	if registered.OccurredAt.IsZero() {
		t.Fatalf("expected timestamp on normalized event")
	}

	activated := events[2]
	if activated.Backend != "bokeh" || activated.ObjectID != "bokeh" {
		t.Fatalf("unexpected activation event: %+v", activated)
	}

	scoped := events[3]
	if scoped.ObjectType != "options.scope" || scoped.ObjectID != "Curve" || scoped.Scope != "Curve" {
		t.Fatalf("unexpected registration event: %+v", scoped)
	}
	snapshot, ok := store.SnapshotID(curve)
	if !ok || scoped.SnapshotID != snapshot {
		t.Fatalf("expected snapshot %q, got %q", snapshot, scoped.SnapshotID)
	}
	keys, ok := scoped.Metadata["keys"].([]string)
	if !ok {
		t.Fatalf("expected keys metadata, got %+v", scoped.Metadata)
	}
	sort.Strings(keys)
	if !reflect.DeepEqual(keys, []string{"alpha", "aspect", "color"}) {
		t.Fatalf("expected registered keys, got %v", keys)
	}

	resolved := events[4]
	if resolved.ObjectType != "element" || resolved.ObjectID != el.ID() {
		t.Fatalf("unexpected resolution event: %+v", resolved)
	}
	if resolved.Scope != "Curve.Curve" || resolved.Backend != "bokeh" {
		t.Fatalf("unexpected resolution target: %+v", resolved)
	}
	// aspect has no bokeh counterpart, so only the style keys survive.
	if got := resolved.Metadata["keys"]; !reflect.DeepEqual(got, []string{"alpha", "color"}) {
		t.Fatalf("expected effective keys, got %v", got)
	}
}

func TestActivityHookErrorsDoNotFailOperations(t *testing.T) {
	failing := &activity.CaptureHook{Err: errors.New("sink offline")}
	store := newTestStore(t, WithActivityHooks(activity.Hooks{failing}))

	if err := store.Register(mustScope(t, "Curve"), mustStyle(t, map[string]any{"color": "blue"})); err != nil {
		t.Fatalf("register should not surface hook failures, got %v", err)
	}
	res, err := store.Resolve(mustElement(t, "Curve"))
	if err != nil {
		t.Fatalf("resolve should not surface hook failures, got %v", err)
	}
	if res.Style["color"] != "blue" {
		t.Fatalf("expected resolution unaffected, got %v", res.Style["color"])
	}
	if len(failing.Captured()) < 3 {
		t.Fatalf("expected events recorded despite hook error, got %d", len(failing.Captured()))
	}
}
