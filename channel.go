package plotopts

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// CollapseFunc combines the elements of a matched overlay into a single
// element. Implementations receive the overlay's elements in order.
type CollapseFunc func(elements []Element) (Element, error)

// Channel binds an overlay pattern to a collapse operation. A pattern names
// one scope per overlay position, joined by "*", e.g.
// "Image.R * Image.G * Image.B".
type Channel struct {
	pattern string
	parts   []Scope
	fn      CollapseFunc
}

// NewChannel parses pattern into per-position scopes. Parts may carry a
// group and label but never a backend qualifier or an object ID.
func NewChannel(pattern string, fn CollapseFunc) (Channel, error) {
	if fn == nil {
		return Channel{}, ErrCollapseFuncRequired
	}
	raw := strings.Split(pattern, "*")
	parts := make([]Scope, 0, len(raw))
	for _, segment := range raw {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			return Channel{}, fmt.Errorf("%w: empty part in %q", ErrChannelPattern, pattern)
		}
		part, err := ParseScope(segment)
		if err != nil {
			return Channel{}, fmt.Errorf("%w: part %q: %v", ErrChannelPattern, segment, err)
		}
		if part.Backend != "" {
			return Channel{}, fmt.Errorf("%w: part %q must not name a backend", ErrChannelPattern, segment)
		}
		if part.Object != "" {
			return Channel{}, fmt.Errorf("%w: part %q must not name an object", ErrChannelPattern, segment)
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return Channel{}, fmt.Errorf("%w: %q", ErrChannelPattern, pattern)
	}
	return Channel{
		pattern: canonicalPattern(parts),
		parts:   parts,
		fn:      fn,
	}, nil
}

func canonicalPattern(parts []Scope) string {
	names := make([]string, len(parts))
	for i, part := range parts {
		names[i] = part.Identifier()
	}
	return strings.Join(names, " * ")
}

// Pattern returns the canonical form of the channel's pattern.
func (c Channel) Pattern() string {
	return c.pattern
}

// Len returns the number of overlay positions the pattern covers.
func (c Channel) Len() int {
	return len(c.parts)
}

// MatchLevel scores the channel against an overlay. Each position scores its
// deepest agreeing scope component (type 1, group 2, label 3); positions sum
// into the overall level. A single disagreeing position fails the match.
func (c Channel) MatchLevel(o Overlay) (int, bool) {
	if o.Len() != len(c.parts) {
		return 0, false
	}
	level := 0
	for i, part := range c.parts {
		el := o.Element(i)
		if part.ElementType != el.Type() {
			return 0, false
		}
		score := 1
		if part.Group != "" {
			if part.Group != el.Group() {
				return 0, false
			}
			score = 2
		}
		if part.Label != "" {
			if part.Label != el.Label() {
				return 0, false
			}
			score = 3
		}
		level += score
	}
	return level, true
}

// Collapse applies the channel's operation to the overlay after checking
// that labelled elements agree: when any element carries a label, all
// labelled elements must share it so the collapse result names one instance.
func (c Channel) Collapse(o Overlay) (Element, error) {
	if _, ok := c.MatchLevel(o); !ok {
		return Element{}, fmt.Errorf("%w: %s does not match %s", ErrNoChannelMatch, c.pattern, o.Path())
	}
	label := ""
	for _, el := range o.Elements() {
		if el.Label() == "" {
			continue
		}
		if label == "" {
			label = el.Label()
			continue
		}
		if el.Label() != label {
			return Element{}, fmt.Errorf("%w: %q vs %q in %s", ErrChannelLabelMismatch, label, el.Label(), o.Path())
		}
	}
	return c.fn(o.Elements())
}

// ChannelRegistry holds overlay channels and selects the strongest match
// for a given overlay.
type ChannelRegistry struct {
	mu       sync.RWMutex
	channels []Channel
}

// NewChannelRegistry constructs an empty registry.
func NewChannelRegistry() *ChannelRegistry {
	return &ChannelRegistry{}
}

// Register parses pattern and stores the channel. Patterns must be unique
// in their canonical form.
func (r *ChannelRegistry) Register(pattern string, fn CollapseFunc) error {
	channel, err := NewChannel(pattern, fn)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.channels {
		if existing.pattern == channel.pattern {
			return fmt.Errorf("%w: %s", ErrDuplicateChannel, channel.pattern)
		}
	}
	r.channels = append(r.channels, channel)
	return nil
}

// StrongestMatch returns the registered channel with the highest match level
// for the overlay. Ties go to the channel registered first.
func (r *ChannelRegistry) StrongestMatch(o Overlay) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	best := Channel{}
	bestLevel := 0
	found := false
	for _, channel := range r.channels {
		level, ok := channel.MatchLevel(o)
		if !ok {
			continue
		}
		if !found || level > bestLevel {
			best = channel
			bestLevel = level
			found = true
		}
	}
	return best, found
}

// Collapse selects the strongest matching channel and applies it.
func (r *ChannelRegistry) Collapse(o Overlay) (Element, error) {
	channel, ok := r.StrongestMatch(o)
	if !ok {
		return Element{}, fmt.Errorf("%w: %s", ErrNoChannelMatch, o.Path())
	}
	return channel.Collapse(o)
}

// Channels lists the registered patterns in canonical form, sorted.
func (r *ChannelRegistry) Channels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patterns := make([]string, 0, len(r.channels))
	for _, channel := range r.channels {
		patterns = append(patterns, channel.pattern)
	}
	sort.Strings(patterns)
	return patterns
}
