package playback

import (
	"sync"
	"time"

	"github.com/spf13/viper"
	"github.com/unpuzzle-app/unpuzzle/key"
	"github.com/unpuzzle-app/unpuzzle/log"
)

const (
	// historyCap bounds the retained update records; oldest are evicted first.
	historyCap = 100
	// recentCount is how many records Stats exposes for diagnostics.
	recentCount = 10

	defaultDuplicateThreshold = 100 * time.Millisecond
)

// Record is a single tracked state-field update. Records are transient and
// retained purely for duplicate detection and diagnostics.
type Record struct {
	Field  Field
	Value  any
	Source string
	At     time.Time
}

// Stats aggregates tracker activity for diagnostics. No behavioral contract.
type Stats struct {
	Total    int
	Skipped  int
	ByField  map[Field]int
	BySource map[string]int
	Recent   []Record
}

// Tracker deduplicates incoming state-field updates within a short time
// window, suppressing redundant re-emissions and cross-source echoes.
//
// Position updates fire many times per second from both the player's event
// stream and the store subscription; without suppression every one would
// cause a redundant downstream write. The window absorbs jitter between
// near-simultaneous producers without masking genuine rapid changes, since a
// different value always passes through.
type Tracker struct {
	mu        sync.Mutex
	threshold time.Duration
	history   []Record
	last      map[Field]Record
	byField   map[Field]int
	bySource  map[string]int
	skipped   int
	total     int

	now func() time.Time
}

// NewTracker creates a tracker with the configured duplicate window, falling
// back to 100ms when unconfigured.
func NewTracker() *Tracker {
	threshold := defaultDuplicateThreshold
	if ms := viper.GetInt(key.CoordinatorDuplicateThreshold); ms > 0 {
		threshold = time.Duration(ms) * time.Millisecond
	}
	return NewTrackerWithThreshold(threshold)
}

// NewTrackerWithThreshold creates a tracker with an explicit duplicate window.
func NewTrackerWithThreshold(threshold time.Duration) *Tracker {
	return &Tracker{
		threshold: threshold,
		last:      make(map[Field]Record),
		byField:   make(map[Field]int),
		bySource:  make(map[string]int),
		now:       time.Now,
	}
}

// TrackUpdate records a field update and reports whether the caller should
// skip it as a duplicate.
//
// An update is a duplicate when the immediately preceding record for the same
// field carries an identical value within the duplicate window: from the same
// source it is a redundant re-emission, from a different source it is an echo
// of a write that already round-tripped. Both are suppressed; the echo case
// is logged on a distinct path since it hints at producers shadowing each
// other. A different value always passes regardless of timing.
func (t *Tracker) TrackUpdate(field Field, value any, source string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	prev, seen := t.last[field]

	skip := seen && prev.Value == value && now.Sub(prev.At) < t.threshold
	if skip {
		t.skipped++
		if prev.Source == source {
			log.Debugf("playback: suppressed redundant %s update from %s", field, source)
		} else {
			log.Warnf("playback: suppressed %s echo: %s repeated value last written by %s", field, source, prev.Source)
		}
	}

	rec := Record{Field: field, Value: value, Source: source, At: now}

	// The per-field map is updated before returning so the next check always
	// compares against the most recent record, never a stale one.
	t.last[field] = rec
	t.total++
	t.byField[field]++
	t.bySource[source]++

	t.history = append(t.history, rec)
	if len(t.history) > historyCap {
		t.history = t.history[len(t.history)-historyCap:]
	}

	return skip
}

// Stats returns aggregate counts by field and source plus the most recent
// records.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Stats{
		Total:    t.total,
		Skipped:  t.skipped,
		ByField:  make(map[Field]int, len(t.byField)),
		BySource: make(map[string]int, len(t.bySource)),
	}
	for f, n := range t.byField {
		s.ByField[f] = n
	}
	for src, n := range t.bySource {
		s.BySource[src] = n
	}

	start := len(t.history) - recentCount
	if start < 0 {
		start = 0
	}
	s.Recent = append(s.Recent, t.history[start:]...)
	return s
}

// Clear empties all tracked state; used on session teardown.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.history = nil
	t.last = make(map[Field]Record)
	t.byField = make(map[Field]int)
	t.bySource = make(map[string]int)
	t.total = 0
	t.skipped = 0
}
