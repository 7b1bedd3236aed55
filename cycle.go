package plotopts

import (
	"encoding/json"
	"fmt"

	layering "github.com/goliatone/go-plotopts/layering"
)

// Cycle is a finite sequence of style values applied cyclically by overlay
// position: position i receives value i modulo the cycle length. Cycles
// survive resolution intact so the same resolved bundle can style every
// position of an overlay.
type Cycle struct {
	values []any
}

// NewCycle builds a cycle over the supplied values. Values are deep copied so
// the cycle stays immutable.
func NewCycle(values ...any) (Cycle, error) {
	if len(values) == 0 {
		return Cycle{}, ErrCycleEmpty
	}
	return Cycle{values: layering.Clone(values)}, nil
}

// DefaultColorCycle returns the palette applied to overlay positions when no
// explicit color cycle is registered.
func DefaultColorCycle() Cycle {
	return Cycle{values: []any{"blue", "green", "red", "cyan", "magenta", "yellow", "black"}}
}

// Values returns a defensive copy of the cycle's values.
func (c Cycle) Values() []any {
	if len(c.values) == 0 {
		return nil
	}
	return layering.Clone(c.values)
}

// Len returns the cycle length.
func (c Cycle) Len() int {
	return len(c.values)
}

// At returns the value for overlay position i, wrapping around the cycle.
// Negative positions count backwards from the end.
func (c Cycle) At(i int) any {
	if len(c.values) == 0 {
		return nil
	}
	idx := i % len(c.values)
	if idx < 0 {
		idx += len(c.values)
	}
	return layering.Clone(c.values[idx])
}

// IsZero reports whether the cycle holds no values.
func (c Cycle) IsZero() bool {
	return len(c.values) == 0
}

func (c Cycle) String() string {
	return fmt.Sprintf("Cycle%v", c.values)
}

// MarshalJSON encodes the cycle as {"$cycle": [...]} so serialized documents
// and traces keep the wrapper distinguishable from a plain list.
func (c Cycle) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]any{cycleKey: c.values})
}

// UnmarshalJSON accepts both the {"$cycle": [...]} wrapper and a bare list.
func (c *Cycle) UnmarshalJSON(payload []byte) error {
	var wrapper map[string][]any
	if err := json.Unmarshal(payload, &wrapper); err == nil {
		if values, ok := wrapper[cycleKey]; ok {
			if len(values) == 0 {
				return ErrCycleEmpty
			}
			c.values = values
			return nil
		}
		return fmt.Errorf("%w: missing %q key", ErrCycleEmpty, cycleKey)
	}
	var values []any
	if err := json.Unmarshal(payload, &values); err != nil {
		return err
	}
	if len(values) == 0 {
		return ErrCycleEmpty
	}
	c.values = values
	return nil
}

const cycleKey = "$cycle"
