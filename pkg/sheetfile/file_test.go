package sheetfile

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	plotopts "github.com/goliatone/go-plotopts"
)

func newStyledStore(t *testing.T) *plotopts.Store {
	t.Helper()
	store := plotopts.NewStore()
	err := store.RegisterBackend("bokeh", plotopts.Vocabulary{
		"color":     {Kind: plotopts.KindStyle, Native: "line_color"},
		"alpha":     {Kind: plotopts.KindStyle},
		"linewidth": {Kind: plotopts.KindStyle, Native: "line_width"},
		"width":     {Kind: plotopts.KindPlot},
	})
	if err != nil {
		t.Fatalf("register backend: %v", err)
	}
	return store
}

func mustStyle(t *testing.T, values map[string]any) plotopts.Options {
	t.Helper()
	style, err := plotopts.Style(values)
	if err != nil {
		t.Fatalf("style options: %v", err)
	}
	return style
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newStyledStore(t)

	cycle, err := plotopts.NewCycle("blue", "green")
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if err := store.RegisterAt("Curve", mustStyle(t, map[string]any{
		"color": cycle,
		"alpha": plotopts.Expr(`backend`),
	})); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := store.RegisterAt("Curve.Curve.Temperature", mustStyle(t, map[string]any{
		"color": "firebrick",
	})); err != nil {
		t.Fatalf("register labelled: %v", err)
	}

	exported := store.Export()

	for _, name := range []string{"sheet.json", "sheet.yaml", "sheet.toml"} {
		path := filepath.Join(t.TempDir(), name)
		if err := Save(path, exported); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if !reflect.DeepEqual(exported, loaded) {
			t.Fatalf("%s round trip mismatch:\nwant: %#v\n got: %#v", name, exported, loaded)
		}
	}
}

func TestLoadAppliesThroughImport(t *testing.T) {
	store := newStyledStore(t)
	path := filepath.Join(t.TempDir(), "sheet.yaml")
	payload := []byte("entries:\n  - scope: Curve\n    style:\n      color:\n        $cycle: [blue, green]\n")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write sheet: %v", err)
	}

	if err := Apply(store, path); err != nil {
		t.Fatalf("apply: %v", err)
	}

	element, err := plotopts.NewElement("Curve")
	if err != nil {
		t.Fatalf("element: %v", err)
	}
	res, err := store.Resolve(element)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	cycle, ok := res.Style["line_color"].(plotopts.Cycle)
	if !ok {
		t.Fatalf("expected cycle for line_color, got %T", res.Style["line_color"])
	}
	if cycle.At(0) != "blue" || cycle.At(1) != "green" || cycle.At(2) != "blue" {
		t.Fatalf("unexpected cycle values: %v", cycle.Values())
	}
}

func TestUnsupportedExtension(t *testing.T) {
	if _, err := Load("sheet.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if err := Save("sheet.ini", plotopts.Sheet{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadRejectsInvalidScope(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.json")
	payload := []byte(`{"entries":[{"scope":"Curve..Bad","style":{"color":"red"}}]}`)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write sheet: %v", err)
	}

	if _, err := Load(path); !errors.Is(err, plotopts.ErrScopeInvalid) {
		t.Fatalf("expected ErrScopeInvalid, got %v", err)
	}
}

func TestLoadRejectsMalformedPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write sheet: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
