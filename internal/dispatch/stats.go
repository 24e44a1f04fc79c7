package dispatch

import (
	"sort"
	"sync"
	"time"
)

// Stats is a point-in-time snapshot of dispatcher counters.
type Stats struct {
	Dispatches uint64
	Deferred   uint64
	Cancelled  uint64
	Delivered  uint64
	Errors     uint64
	Panics     uint64
	Queued     uint64
	Drained    uint64

	TotalDuration time.Duration

	// Handlers is the number of live handler entries across both tables.
	Handlers int

	// Middleware lists installed middleware names in chain order.
	Middleware []string

	// Types holds per event type counters, sorted by type.
	Types []TypeStats
}

// AverageDuration returns the mean delivery duration.
func (s Stats) AverageDuration() time.Duration {
	if s.Dispatches == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.Dispatches)
}

// TypeStats holds counters for a single event type.
type TypeStats struct {
	EventType     string
	Dispatches    uint64
	Errors        uint64
	TotalDuration time.Duration
	MinDuration   time.Duration
	MaxDuration   time.Duration
	LastDispatch  time.Time
}

// metrics collects dispatch statistics.
type metrics struct {
	mu sync.Mutex

	perType map[string]*TypeStats

	dispatches uint64
	deferred   uint64
	cancelled  uint64
	delivered  uint64
	errors     uint64
	panics     uint64
	queued     uint64
	drained    uint64

	totalDuration time.Duration
}

func newMetrics() *metrics {
	return &metrics{perType: make(map[string]*TypeStats)}
}

func (m *metrics) recordDispatch(r *Report, panics int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dispatches++
	m.delivered += uint64(r.Delivered)
	m.errors += uint64(len(r.Errors))
	m.panics += uint64(panics)
	m.totalDuration += r.Duration
	if r.Cancelled {
		m.cancelled++
	}

	ts := m.perType[r.EventType]
	if ts == nil {
		ts = &TypeStats{
			EventType:   r.EventType,
			MinDuration: r.Duration,
			MaxDuration: r.Duration,
		}
		m.perType[r.EventType] = ts
	}
	ts.Dispatches++
	ts.Errors += uint64(len(r.Errors))
	ts.TotalDuration += r.Duration
	ts.LastDispatch = time.Now()
	if r.Duration < ts.MinDuration {
		ts.MinDuration = r.Duration
	}
	if r.Duration > ts.MaxDuration {
		ts.MaxDuration = r.Duration
	}
}

func (m *metrics) recordDeferred() {
	m.mu.Lock()
	m.deferred++
	m.mu.Unlock()
}

func (m *metrics) recordQueued() {
	m.mu.Lock()
	m.queued++
	m.mu.Unlock()
}

func (m *metrics) recordDrained(n int) {
	m.mu.Lock()
	m.drained += uint64(n)
	m.mu.Unlock()
}

func (m *metrics) snapshot() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{
		Dispatches:    m.dispatches,
		Deferred:      m.deferred,
		Cancelled:     m.cancelled,
		Delivered:     m.delivered,
		Errors:        m.errors,
		Panics:        m.panics,
		Queued:        m.queued,
		Drained:       m.drained,
		TotalDuration: m.totalDuration,
		Types:         make([]TypeStats, 0, len(m.perType)),
	}
	for _, ts := range m.perType {
		s.Types = append(s.Types, *ts)
	}
	sort.Slice(s.Types, func(i, j int) bool {
		return s.Types[i].EventType < s.Types[j].EventType
	})
	return s
}
