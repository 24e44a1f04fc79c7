package devtools

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/dshills/purdah/internal/dispatch"
	"github.com/dshills/purdah/internal/state"
)

// Snapshot is a point-in-time view of a runtime for debugging.
type Snapshot struct {
	Slots    []state.SlotInfo `json:"slots"`
	Dispatch dispatch.Stats   `json:"dispatch"`
	Pending  int              `json:"pending"`
	History  []TypeSummary    `json:"history,omitempty"`
}

// Inspect captures slot, dispatcher and (when rec is non-nil) history state.
func Inspect(r *state.Registry, rec *Recorder) Snapshot {
	d := r.Dispatcher()
	s := Snapshot{
		Slots:    r.Describe(),
		Dispatch: d.Stats(),
		Pending:  d.Pending(),
	}
	if rec != nil {
		s.History = rec.Summary()
	}
	return s
}

// WriteJSON writes s as indented JSON.
func (s Snapshot) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
