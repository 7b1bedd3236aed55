package plotopts

import (
	"fmt"
	"sort"

	layering "github.com/goliatone/go-plotopts/layering"
)

// Kind distinguishes plot options, consumed by the figure machinery, from
// style options, forwarded to the rendering backend.
type Kind string

const (
	// KindPlot marks layout and figure options (aspect, size, axes...).
	KindPlot Kind = "plot"
	// KindStyle marks visual options translated to the backend (color,
	// linewidth, cmap...).
	KindStyle Kind = "style"
)

func (k Kind) valid() bool {
	return k == KindPlot || k == KindStyle
}

// Expr is an expression-valued option. The expression is evaluated during
// resolution against the element being styled, with access to its type,
// group, label, dimensions, and any caller-supplied arguments.
type Expr string

// Options is one keyword bundle registered at a scope. Bundles are immutable
// after construction; With derives extended copies.
type Options struct {
	kind   Kind
	values map[string]any
}

// NewOptions builds a bundle of the given kind. Values are deep copied, and
// any Cycle values must share a single length so overlay positions stay
// aligned across keywords.
func NewOptions(kind Kind, values map[string]any) (Options, error) {
	if !kind.valid() {
		return Options{}, fmt.Errorf("%w: %q", ErrKindInvalid, kind)
	}
	if err := validateCycleLengths(values); err != nil {
		return Options{}, err
	}
	return Options{
		kind:   kind,
		values: layering.Clone(values),
	}, nil
}

// Plot builds a plot-kind bundle.
func Plot(values map[string]any) (Options, error) {
	return NewOptions(KindPlot, values)
}

// Style builds a style-kind bundle.
func Style(values map[string]any) (Options, error) {
	return NewOptions(KindStyle, values)
}

// Kind returns the bundle kind.
func (o Options) Kind() Kind { return o.kind }

// Values returns a deep copy of the bundle's keyword map.
func (o Options) Values() map[string]any {
	if len(o.values) == 0 {
		return nil
	}
	return layering.Clone(o.values)
}

// Value returns the value registered for name.
func (o Options) Value(name string) (any, bool) {
	value, ok := o.values[name]
	if !ok {
		return nil, false
	}
	return layering.Clone(value), true
}

// Keys returns the bundle's keywords sorted alphabetically.
func (o Options) Keys() []string {
	if len(o.values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(o.values))
	for key := range o.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keywords in the bundle.
func (o Options) Len() int { return len(o.values) }

// IsZero reports whether the bundle carries no kind and no values.
func (o Options) IsZero() bool {
	return o.kind == "" && len(o.values) == 0
}

// With returns a copy of the bundle extended with values; supplied values win
// over existing ones. Cycle alignment is revalidated on the combined map.
func (o Options) With(values map[string]any) (Options, error) {
	merged := layering.MergeLayers(values, o.values)
	return NewOptions(o.kind, merged)
}

// validateCycleLengths enforces a single length across all top-level cycles
// in the map, so position i picks aligned values from every keyword.
func validateCycleLengths(values map[string]any) error {
	length := 0
	for _, value := range values {
		cycle, ok := value.(Cycle)
		if !ok {
			continue
		}
		if cycle.IsZero() {
			return ErrCycleEmpty
		}
		if length == 0 {
			length = cycle.Len()
			continue
		}
		if cycle.Len() != length {
			return fmt.Errorf("%w: %d and %d", ErrCycleLength, length, cycle.Len())
		}
	}
	return nil
}
