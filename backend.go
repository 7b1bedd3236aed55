package plotopts

import (
	"fmt"
	"sort"
	"strings"
)

// VocabEntry describes one abstract option a backend recognizes.
type VocabEntry struct {
	// Kind tags whether the option feeds the plot machinery or the backend's
	// styling path.
	Kind Kind
	// Native is the backend's own parameter name. Empty means the abstract
	// name is already native.
	Native string
	// Unsupported marks an option the backend recognizes but deliberately
	// ignores; such options drop to no-ops at resolution.
	Unsupported bool
}

// Vocabulary is a backend's capability table, keyed by abstract option name.
// Vocabularies are enumerated data: what a backend can do is declared up
// front, and registrations validate against the union of all declared tables.
type Vocabulary map[string]VocabEntry

// Validate checks every entry carries a valid kind and a usable name.
func (v Vocabulary) Validate() error {
	for name, entry := range v {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty option name", ErrKindInvalid)
		}
		if !entry.Kind.valid() {
			return fmt.Errorf("%w: option %q has kind %q", ErrKindInvalid, name, entry.Kind)
		}
	}
	return nil
}

// Recognizes reports whether the vocabulary knows the abstract name.
func (v Vocabulary) Recognizes(name string) bool {
	_, ok := v[name]
	return ok
}

// Entry returns the vocabulary entry for name.
func (v Vocabulary) Entry(name string) (VocabEntry, bool) {
	entry, ok := v[name]
	return entry, ok
}

// NativeName translates an abstract option name to the backend's native
// parameter name, returning the abstract name unchanged when no translation
// is declared.
func (v Vocabulary) NativeName(name string) string {
	if entry, ok := v[name]; ok && entry.Native != "" {
		return entry.Native
	}
	return name
}

// Names returns the recognized abstract names sorted alphabetically.
func (v Vocabulary) Names() []string {
	if len(v) == 0 {
		return nil
	}
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NamesOf returns the recognized names of one kind, sorted.
func (v Vocabulary) NamesOf(kind Kind) []string {
	if len(v) == 0 {
		return nil
	}
	names := make([]string, 0, len(v))
	for name, entry := range v {
		if entry.Kind == kind {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (v Vocabulary) clone() Vocabulary {
	if len(v) == 0 {
		return nil
	}
	out := make(Vocabulary, len(v))
	for name, entry := range v {
		out[name] = entry
	}
	return out
}
