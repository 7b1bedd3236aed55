package plotopts

import (
	"fmt"
	"strings"
)

// Scope keys a registered bundle to the elements it applies to: an element
// type, narrowed by group and label, or a single object by ID. A scope with a
// Backend applies only while that backend resolves; an empty Backend applies
// under any backend.
//
// Specificity is total: type < type.group < type.group.label < object, and at
// equal structural level a backend-qualified scope beats a backend-agnostic
// one.
type Scope struct {
	ElementType string `json:"element_type,omitempty"`
	Group       string `json:"group,omitempty"`
	Label       string `json:"label,omitempty"`
	Object      string `json:"object,omitempty"`
	Backend     string `json:"backend,omitempty"`
}

// NewScope builds a structural scope from its dotted-path components.
// Validation is deferred to registration so callers can assemble scopes
// before a store exists.
func NewScope(elementType, group, label string) Scope {
	return Scope{
		ElementType: strings.TrimSpace(elementType),
		Group:       strings.TrimSpace(group),
		Label:       strings.TrimSpace(label),
	}
}

// ScopeForType returns the broadest scope for an element type.
func ScopeForType(elementType string) Scope {
	return NewScope(elementType, "", "")
}

// ScopeForElement returns the most specific structural scope matching e:
// its type, group, and label when present.
func ScopeForElement(e Element) Scope {
	return NewScope(e.Type(), e.Group(), e.Label())
}

// ScopeForObject returns the per-object scope for an element ID.
func ScopeForObject(id string) Scope {
	return Scope{Object: strings.TrimSpace(id)}
}

// ParseScope parses the textual scope form: "Type", "Type.Group",
// "Type.Group.Label", or "id:<object-id>", each optionally suffixed with
// "@backend". Components may contain spaces but not '.', '@', '*', or ':'.
func ParseScope(path string) (Scope, error) {
	raw := strings.TrimSpace(path)
	if raw == "" {
		return Scope{}, fmt.Errorf("%w: empty path", ErrScopeInvalid)
	}

	var backend string
	if at := strings.LastIndex(raw, "@"); at >= 0 {
		backend = strings.TrimSpace(raw[at+1:])
		raw = strings.TrimSpace(raw[:at])
		if backend == "" || raw == "" {
			return Scope{}, fmt.Errorf("%w: %q", ErrScopeInvalid, path)
		}
	}

	if rest, ok := strings.CutPrefix(raw, "id:"); ok {
		id := strings.TrimSpace(rest)
		if id == "" {
			return Scope{}, fmt.Errorf("%w: empty object id in %q", ErrScopeInvalid, path)
		}
		return Scope{Object: id, Backend: backend}, nil
	}

	parts := strings.Split(raw, ".")
	if len(parts) > 3 {
		return Scope{}, fmt.Errorf("%w: %q has more than three components", ErrScopeInvalid, path)
	}
	scope := Scope{Backend: backend}
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if !validScopePart(part) {
			return Scope{}, fmt.Errorf("%w: component %q in %q", ErrScopeInvalid, part, path)
		}
		switch i {
		case 0:
			scope.ElementType = part
		case 1:
			scope.Group = part
		case 2:
			scope.Label = part
		}
	}
	return scope, nil
}

// ForBackend returns a copy of the scope qualified to backend. An empty name
// removes the qualification.
func (s Scope) ForBackend(backend string) Scope {
	s.Backend = strings.TrimSpace(backend)
	return s
}

// Validate checks structural consistency. Object scopes carry only the ID;
// structural scopes need a type, and a label needs a group.
func (s Scope) Validate() error {
	if s.Object != "" {
		if s.ElementType != "" || s.Group != "" || s.Label != "" {
			return ErrObjectScopeExclusive
		}
		return nil
	}
	if s.ElementType == "" {
		return ErrElementTypeRequired
	}
	if s.Label != "" && s.Group == "" {
		return ErrLabelRequiresGroup
	}
	return nil
}

// Identifier returns the canonical textual form, parseable by ParseScope and
// used as the storage key for registrations.
func (s Scope) Identifier() string {
	var path string
	switch {
	case s.Object != "":
		path = "id:" + s.Object
	case s.Label != "":
		path = s.ElementType + "." + s.Group + "." + s.Label
	case s.Group != "":
		path = s.ElementType + "." + s.Group
	default:
		path = s.ElementType
	}
	if s.Backend != "" {
		path += "@" + s.Backend
	}
	return path
}

func (s Scope) String() string {
	return s.Identifier()
}

// Specificity ranks the scope within the resolution chain. Higher values win
// merges. The structural level dominates; a backend qualification breaks ties
// within a level.
func (s Scope) Specificity() int {
	rank := s.structuralLevel() * 2
	if s.Backend != "" {
		rank++
	}
	return rank
}

func (s Scope) structuralLevel() int {
	switch {
	case s.Object != "":
		return 4
	case s.Label != "":
		return 3
	case s.Group != "":
		return 2
	default:
		return 1
	}
}

// Matches reports whether the scope applies to e when resolving for backend.
func (s Scope) Matches(e Element, backend string) bool {
	if s.Backend != "" && s.Backend != backend {
		return false
	}
	if s.Object != "" {
		return s.Object == e.ID()
	}
	if s.ElementType != e.Type() {
		return false
	}
	if s.Group != "" && s.Group != e.Group() {
		return false
	}
	if s.Label != "" && s.Label != e.Label() {
		return false
	}
	return true
}

func (s Scope) isZero() bool {
	return s == Scope{}
}

func validScopePart(part string) bool {
	if part == "" {
		return false
	}
	return !strings.ContainsAny(part, ".@*:")
}
