package plotopts

import (
	"fmt"
	"sort"
)

const exprKey = "$expr"

// Sheet is the serialized form of a store's registrations. Cycles and
// expressions are written as tagged maps ({"$cycle": [...]}, {"$expr": "..."})
// so any codec that handles plain maps round-trips them.
type Sheet struct {
	Entries []SheetEntry `json:"entries"`
}

// SheetEntry captures one registered scope with its bundles.
type SheetEntry struct {
	Scope      string         `json:"scope"`
	Plot       map[string]any `json:"plot,omitempty"`
	Style      map[string]any `json:"style,omitempty"`
	SnapshotID string         `json:"snapshot_id,omitempty"`
}

// Validate checks that every entry names a parseable scope and carries at
// least one bundle.
func (s Sheet) Validate() error {
	for i, entry := range s.Entries {
		if _, err := ParseScope(entry.Scope); err != nil {
			return fmt.Errorf("sheet entry %d: %w", i, err)
		}
		if len(entry.Plot) == 0 && len(entry.Style) == 0 {
			return fmt.Errorf("sheet entry %d (%s): no options", i, entry.Scope)
		}
	}
	return nil
}

// Export serializes every registration, sorted by scope identifier.
func (s *Store) Export() Sheet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sheet := Sheet{Entries: make([]SheetEntry, 0, len(s.entries))}
	for _, reg := range s.entries {
		entry := SheetEntry{
			Scope:      reg.scope.Identifier(),
			SnapshotID: reg.snapshotID,
		}
		if plot, ok := reg.bundles[KindPlot]; ok {
			entry.Plot = encodeSheetMap(plot)
		}
		if style, ok := reg.bundles[KindStyle]; ok {
			entry.Style = encodeSheetMap(style)
		}
		sheet.Entries = append(sheet.Entries, entry)
	}
	sort.Slice(sheet.Entries, func(i, j int) bool {
		return sheet.Entries[i].Scope < sheet.Entries[j].Scope
	})
	return sheet
}

// Import registers every sheet entry. Entries pass through the same keyword
// validation as Register, so backends must be registered first. Snapshot IDs
// are reassigned; the sheet's IDs describe the exporting store.
func (s *Store) Import(sheet Sheet) error {
	for i, entry := range sheet.Entries {
		scope, err := ParseScope(entry.Scope)
		if err != nil {
			return fmt.Errorf("sheet entry %d: %w", i, err)
		}
		var bundles []Options
		if len(entry.Plot) > 0 {
			plot, err := NewOptions(KindPlot, decodeSheetMap(entry.Plot))
			if err != nil {
				return fmt.Errorf("sheet entry %d (%s): %w", i, entry.Scope, err)
			}
			bundles = append(bundles, plot)
		}
		if len(entry.Style) > 0 {
			style, err := NewOptions(KindStyle, decodeSheetMap(entry.Style))
			if err != nil {
				return fmt.Errorf("sheet entry %d (%s): %w", i, entry.Scope, err)
			}
			bundles = append(bundles, style)
		}
		if len(bundles) == 0 {
			return fmt.Errorf("sheet entry %d (%s): no options", i, entry.Scope)
		}
		if err := s.Register(scope, bundles...); err != nil {
			return fmt.Errorf("sheet entry %d (%s): %w", i, entry.Scope, err)
		}
	}
	return nil
}

func encodeSheetMap(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[key] = encodeSheetValue(value)
	}
	return out
}

func encodeSheetValue(value any) any {
	switch v := value.(type) {
	case Cycle:
		values := v.Values()
		for i, item := range values {
			values[i] = encodeSheetValue(item)
		}
		return map[string]any{cycleKey: values}
	case Expr:
		return map[string]any{exprKey: string(v)}
	case map[string]any:
		return encodeSheetMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = encodeSheetValue(item)
		}
		return out
	default:
		return value
	}
}

func decodeSheetMap(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[key] = decodeSheetValue(value)
	}
	return out
}

func decodeSheetValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 1 {
			if text, ok := v[exprKey].(string); ok {
				return Expr(text)
			}
			if list, ok := v[cycleKey].([]any); ok && len(list) > 0 {
				values := make([]any, len(list))
				for i, item := range list {
					values[i] = decodeSheetValue(item)
				}
				return Cycle{values: values}
			}
		}
		return decodeSheetMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = decodeSheetValue(item)
		}
		return out
	default:
		return value
	}
}
