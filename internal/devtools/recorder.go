package devtools

import (
	"context"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"

	"github.com/dshills/purdah/internal/dispatch"
	"github.com/dshills/purdah/internal/event"
)

// DefaultCapacity is the history size used when none is given.
const DefaultCapacity = 256

// Entry is one recorded dispatch.
type Entry struct {
	ID          string        `json:"id"`
	EventType   string        `json:"event_type"`
	EventID     string        `json:"event_id,omitempty"`
	Source      string        `json:"source,omitempty"`
	Start       time.Time     `json:"start"`
	Duration    time.Duration `json:"duration_ns"`
	Message     bool          `json:"message"`
	Action      bool          `json:"action"`
	Delivered   int           `json:"delivered"`
	Cancelled   bool          `json:"cancelled,omitempty"`
	CancelledBy string        `json:"cancelled_by,omitempty"`
	Error       string        `json:"error,omitempty"`
	Payload     any           `json:"payload,omitempty"`

	event event.Event
}

// Event returns the recorded event.
func (e Entry) Event() event.Event {
	return e.event
}

// Recorder is middleware that keeps a bounded dispatch history.
type Recorder struct {
	mu      sync.Mutex
	ring    []Entry
	next    int
	full    bool
	dropped uint64

	paused atomic.Bool
}

type startKey struct {
	r *Recorder
}

// NewRecorder keeps up to capacity entries, discarding the oldest first.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{ring: make([]Entry, capacity)}
}

// Name implements dispatch.Middleware.
func (r *Recorder) Name() string { return "recorder" }

// Pause stops recording until Resume.
func (r *Recorder) Pause() { r.paused.Store(true) }

// Resume restarts recording.
func (r *Recorder) Resume() { r.paused.Store(false) }

// Paused reports whether recording is paused.
func (r *Recorder) Paused() bool { return r.paused.Load() }

// Before implements dispatch.Middleware.
func (r *Recorder) Before(ctx context.Context, ev event.Event) (context.Context, dispatch.Verdict) {
	if r.paused.Load() {
		return ctx, dispatch.Continue
	}
	return context.WithValue(ctx, startKey{r}, time.Now()), dispatch.Continue
}

// After implements dispatch.Middleware.
func (r *Recorder) After(ctx context.Context, ev event.Event, rep dispatch.Report) {
	start, ok := ctx.Value(startKey{r}).(time.Time)
	if !ok {
		return
	}

	meta := event.MetadataOf(ev)
	e := Entry{
		ID:          ulid.Make().String(),
		EventType:   rep.EventType,
		EventID:     rep.EventID,
		Source:      meta.Source,
		Start:       start,
		Duration:    rep.Duration,
		Message:     rep.Message,
		Action:      rep.Action,
		Delivered:   rep.Delivered,
		Cancelled:   rep.Cancelled,
		CancelledBy: rep.CancelledBy,
		event:       ev,
	}
	if err := rep.Err(); err != nil {
		e.Error = err.Error()
	}
	if payload, ok := event.Payload(ev); ok {
		e.Payload = payload
	}
	r.add(e)
}

func (r *Recorder) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.full {
		r.dropped++
	}
	r.ring[r.next] = e
	r.next = (r.next + 1) % len(r.ring)
	if r.next == 0 {
		r.full = true
	}
}

// Entries returns recorded history, oldest first.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		return append([]Entry(nil), r.ring[:r.next]...)
	}
	out := make([]Entry, 0, len(r.ring))
	out = append(out, r.ring[r.next:]...)
	return append(out, r.ring[:r.next]...)
}

// Len returns the number of retained entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return len(r.ring)
	}
	return r.next
}

// Dropped returns how many entries were evicted by newer ones.
func (r *Recorder) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Clear discards all history.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.ring)
	r.next = 0
	r.full = false
	r.dropped = 0
}

// TypeSummary aggregates recorded entries of one event type.
type TypeSummary struct {
	EventType    string        `json:"event_type"`
	Count        int           `json:"count"`
	Errors       int           `json:"errors"`
	Cancelled    int           `json:"cancelled"`
	MeanDuration time.Duration `json:"mean_duration_ns"`
}

// Summary returns per-type aggregates, most frequent first.
func (r *Recorder) Summary() []TypeSummary {
	byType := make(map[string]*TypeSummary)
	totals := make(map[string]time.Duration)
	for _, e := range r.Entries() {
		s := byType[e.EventType]
		if s == nil {
			s = &TypeSummary{EventType: e.EventType}
			byType[e.EventType] = s
		}
		s.Count++
		totals[e.EventType] += e.Duration
		if e.Error != "" {
			s.Errors++
		}
		if e.Cancelled {
			s.Cancelled++
		}
	}

	out := make([]TypeSummary, 0, len(byType))
	for typ, s := range byType {
		s.MeanDuration = totals[typ] / time.Duration(s.Count)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].EventType < out[j].EventType
	})
	return out
}

// Export writes the history as an indented JSON array.
func (r *Recorder) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Entries())
}

// Replay dispatches recorded events into d, oldest first. When keep is
// non-nil only entries it accepts are replayed. History is copied before
// replaying, so replaying through d while r is installed on d does not
// replay the new entries.
func (r *Recorder) Replay(ctx context.Context, d *dispatch.Dispatcher, keep func(Entry) bool) []dispatch.Report {
	entries := r.Entries()
	reports := make([]dispatch.Report, 0, len(entries))
	for _, e := range entries {
		if e.event == nil {
			continue
		}
		if keep != nil && !keep(e) {
			continue
		}
		reports = append(reports, d.Dispatch(ctx, e.event))
	}
	return reports
}
