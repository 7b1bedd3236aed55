package plotopts

import (
	"strings"

	"github.com/google/uuid"
)

// Element identifies a visualizable object for options resolution. Elements
// are immutable: styling attaches to the store, never to the element itself.
type Element struct {
	typ        string
	group      string
	label      string
	id         string
	dimensions []string
}

// ElementOption configures optional element metadata at construction.
type ElementOption func(*elementConfig)

type elementConfig struct {
	group      string
	label      string
	id         string
	dimensions []string
}

// WithGroup sets the semantic group. When omitted the group defaults to the
// element type, so ungrouped elements still occupy a full Type.Group path.
func WithGroup(group string) ElementOption {
	return func(cfg *elementConfig) {
		cfg.group = strings.TrimSpace(group)
	}
}

// WithLabel sets the instance label distinguishing otherwise-identical
// elements.
func WithLabel(label string) ElementOption {
	return func(cfg *elementConfig) {
		cfg.label = strings.TrimSpace(label)
	}
}

// WithElementID pins the element identity. Omit it to receive a generated ID;
// supply it when rehydrating elements that already carry per-object options.
func WithElementID(id string) ElementOption {
	return func(cfg *elementConfig) {
		cfg.id = strings.TrimSpace(id)
	}
}

// WithDimensions records the element's value dimensions, exposed to
// expression-valued options during resolution.
func WithDimensions(dimensions ...string) ElementOption {
	return func(cfg *elementConfig) {
		cfg.dimensions = append([]string{}, dimensions...)
	}
}

// NewElement constructs an element of the given type. The type is required;
// group defaults to the type and the ID is generated when not supplied.
func NewElement(typ string, opts ...ElementOption) (Element, error) {
	typ = strings.TrimSpace(typ)
	if typ == "" {
		return Element{}, ErrElementTypeRequired
	}
	cfg := elementConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.group == "" {
		cfg.group = typ
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}
	return Element{
		typ:        typ,
		group:      cfg.group,
		label:      cfg.label,
		id:         cfg.id,
		dimensions: cfg.dimensions,
	}, nil
}

// Type returns the element kind, e.g. "Curve".
func (e Element) Type() string { return e.typ }

// Group returns the semantic group.
func (e Element) Group() string { return e.group }

// Label returns the instance label, empty when unlabelled.
func (e Element) Label() string { return e.label }

// ID returns the element identity used for per-object styling.
func (e Element) ID() string { return e.id }

// Dimensions returns a copy of the element's value dimensions.
func (e Element) Dimensions() []string {
	if len(e.dimensions) == 0 {
		return nil
	}
	return append([]string{}, e.dimensions...)
}

// Path returns the dotted Type.Group[.Label] path for the element.
func (e Element) Path() string {
	parts := []string{e.typ, e.group}
	if e.label != "" {
		parts = append(parts, e.label)
	}
	return strings.Join(parts, ".")
}

// Relabel returns a copy of the element carrying label. The copy keeps the
// original identity so per-object options follow it.
func (e Element) Relabel(label string) Element {
	e.label = strings.TrimSpace(label)
	return e
}

// Regroup returns a copy of the element carrying group, keeping identity.
func (e Element) Regroup(group string) Element {
	group = strings.TrimSpace(group)
	if group == "" {
		group = e.typ
	}
	e.group = group
	return e
}

func (e Element) isZero() bool {
	return e.typ == "" && e.group == "" && e.label == "" && e.id == ""
}

// Overlay is an ordered composite of elements displayed together. The
// position of an element within the overlay selects its cycle values.
type Overlay struct {
	elements []Element
}

// NewOverlay builds an overlay over the supplied elements in order.
func NewOverlay(elements ...Element) Overlay {
	return Overlay{elements: append([]Element{}, elements...)}
}

// Len returns the number of elements in the overlay.
func (o Overlay) Len() int { return len(o.elements) }

// Elements returns a copy of the overlay's elements in display order.
func (o Overlay) Elements() []Element {
	if len(o.elements) == 0 {
		return nil
	}
	return append([]Element{}, o.elements...)
}

// Element returns the element at position i.
func (o Overlay) Element(i int) Element {
	if i < 0 || i >= len(o.elements) {
		return Element{}
	}
	return o.elements[i]
}

// Path returns the overlay's pattern path, elements joined by " * ".
func (o Overlay) Path() string {
	parts := make([]string, len(o.elements))
	for i, el := range o.elements {
		parts[i] = el.Path()
	}
	return strings.Join(parts, " * ")
}
