package trace

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSON writes the trace as a JSON array of snapshots. An indent of ""
// produces compact output.
func WriteJSON(w io.Writer, t *Trace, indent string) error {
	enc := json.NewEncoder(w)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	steps := t.Steps
	if steps == nil {
		steps = []Snapshot{}
	}
	if err := enc.Encode(steps); err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}
	return nil
}

// ReadJSON reads a trace written by WriteJSON.
func ReadJSON(r io.Reader) (*Trace, error) {
	var steps []Snapshot
	if err := json.NewDecoder(r).Decode(&steps); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	return &Trace{Steps: steps}, nil
}
