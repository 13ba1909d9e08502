// Package selection owns clip selection state: user-marked in/out points on
// the timeline and transcript text selections mapped back to time ranges.
// Pure data and validation, no I/O.
package selection

import (
	"sync"

	"github.com/samber/mo"
)

// TranscriptSelection is a text span the user selected in the rendered
// transcript, mapped back to a time range.
type TranscriptSelection struct {
	Text      string
	StartTime float64
	EndTime   float64
}

// Model holds the active clip selection for one player session. It is
// ephemeral UI state representing a to-be-sent clip reference and is never
// persisted.
//
// All setters normalize, so whenever both points are set the invariant
// InPoint ≤ OutPoint holds by construction.
type Model struct {
	mu         sync.Mutex
	in         mo.Option[float64]
	out        mo.Option[float64]
	transcript *TranscriptSelection

	// clearArtifact, when set, clears the visual selection artifact in the
	// rendering surface. Invoked on Clear.
	clearArtifact func()
}

// NewModel creates an empty selection model.
func NewModel() *Model {
	return &Model{}
}

// OnClear installs a hook invoked whenever the selection is cleared, used to
// drop the rendering surface's visual selection artifact.
func (m *Model) OnClear(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearArtifact = f
}

// SetInPoint marks the clip start. When the new time lands past an existing
// out-point the range collapses to [t, t] — both points move together,
// treating the action as restarting the selection. Otherwise the out-point is
// preserved, defaulting to t when none is set.
func (m *Model) SetInPoint(t float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if out, ok := m.out.Get(); ok && t > out {
		m.in = mo.Some(t)
		m.out = mo.Some(t)
		return
	}
	m.in = mo.Some(t)
	if m.out.IsAbsent() {
		m.out = mo.Some(t)
	}
}

// SetOutPoint marks the clip end. With no in-point set the range defaults to
// [0, t]. A time at or before the in-point produces a degenerate zero-length
// range, accepted rather than rejected.
func (m *Model) SetOutPoint(t float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.in.IsAbsent() {
		m.in = mo.Some(0.0)
	}
	m.out = mo.Some(t)
	if in := m.in.MustGet(); t < in {
		m.in = mo.Some(t)
	}
}

// Range returns the current in/out points.
func (m *Model) Range() (in, out mo.Option[float64]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.in, m.out
}

// SetTranscriptSelection stores the active transcript selection.
func (m *Model) SetTranscriptSelection(sel *TranscriptSelection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcript = sel
}

// TranscriptSelection returns the active transcript selection, or nil.
func (m *Model) TranscriptSelection() *TranscriptSelection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transcript
}

// Clear resets both points, drops any transcript selection, and clears the
// rendering surface's selection artifact.
func (m *Model) Clear() {
	m.mu.Lock()
	m.in = mo.None[float64]()
	m.out = mo.None[float64]()
	m.transcript = nil
	clear := m.clearArtifact
	m.mu.Unlock()

	if clear != nil {
		clear()
	}
}
