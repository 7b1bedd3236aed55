package plotopts

import "encoding/json"

// Provenance records one scope's contribution to a resolved option.
type Provenance struct {
	Scope      Scope  `json:"scope"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Path       string `json:"path"`
	Value      any    `json:"value,omitempty"`
	Found      bool   `json:"found"`
}

// Trace explains a single resolved option. Layers are ordered strongest
// first; the first layer with Found set supplied the effective value.
type Trace struct {
	Path   string       `json:"path"`
	Layers []Provenance `json:"layers"`
}

// Winner returns the provenance layer that supplied the effective value.
func (t Trace) Winner() (Provenance, bool) {
	for _, layer := range t.Layers {
		if layer.Found {
			return layer, true
		}
	}
	return Provenance{}, false
}

// Overridden returns the layers that carried a value but lost to a more
// specific scope.
func (t Trace) Overridden() []Provenance {
	var losers []Provenance
	seen := false
	for _, layer := range t.Layers {
		if !layer.Found {
			continue
		}
		if !seen {
			seen = true
			continue
		}
		losers = append(losers, layer)
	}
	return losers
}

// ToJSON serializes the trace for logs and debugging tools.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.MarshalIndent(alias(t), "", "  ")
}

// TraceFromJSON deserializes a trace produced by ToJSON.
func TraceFromJSON(data []byte) (Trace, error) {
	type alias Trace
	var out alias
	if err := json.Unmarshal(data, &out); err != nil {
		return Trace{}, err
	}
	return Trace(out), nil
}
