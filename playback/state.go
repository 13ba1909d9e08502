// Package playback implements the single-source-of-truth coordination core for
// media playback state.
//
// Multiple independent producers (the external player process, the canonical
// store, per-feature observers) must agree on one notion of "current playback
// state" without duplicate writes, races between fast-firing position updates,
// or stale reads. The Coordinator mediates between registered sources, the
// Tracker suppresses redundant updates, and the Store holds the canonical
// snapshot.
package playback

import (
	"github.com/samber/mo"
)

// Field identifies a single playback state field.
type Field string

const (
	FieldIsPlaying    Field = "isPlaying"
	FieldCurrentTime  Field = "currentTime"
	FieldDuration     Field = "duration"
	FieldVolume       Field = "volume"
	FieldIsMuted      Field = "isMuted"
	FieldPlaybackRate Field = "playbackRate"
)

// Fields lists every playback state field in canonical order.
func Fields() []Field {
	return []Field{
		FieldIsPlaying,
		FieldCurrentTime,
		FieldDuration,
		FieldVolume,
		FieldIsMuted,
		FieldPlaybackRate,
	}
}

// State is a complete snapshot of media playback.
// CurrentTime and Duration are expressed in seconds; Volume is in [0, 1].
// Muting and zero-volume are independent flags.
type State struct {
	IsPlaying    bool    `json:"is_playing"`
	CurrentTime  float64 `json:"current_time"`
	Duration     float64 `json:"duration"`
	Volume       float64 `json:"volume"`
	IsMuted      bool    `json:"is_muted"`
	PlaybackRate float64 `json:"playback_rate"`
}

// DefaultState returns the initial snapshot used at construction and on reset.
func DefaultState() State {
	return State{Volume: 1, PlaybackRate: 1}
}

// Get returns the value of a single field.
func (s State) Get(f Field) any {
	switch f {
	case FieldIsPlaying:
		return s.IsPlaying
	case FieldCurrentTime:
		return s.CurrentTime
	case FieldDuration:
		return s.Duration
	case FieldVolume:
		return s.Volume
	case FieldIsMuted:
		return s.IsMuted
	case FieldPlaybackRate:
		return s.PlaybackRate
	default:
		return nil
	}
}

// Patch is a partial state update. Absent fields leave the target untouched,
// so independent producers can report only the fields they actually observe.
type Patch struct {
	IsPlaying    mo.Option[bool]
	CurrentTime  mo.Option[float64]
	Duration     mo.Option[float64]
	Volume       mo.Option[float64]
	IsMuted      mo.Option[bool]
	PlaybackRate mo.Option[float64]
}

// FullPatch converts a complete snapshot into a patch that sets every field.
func FullPatch(s State) Patch {
	return Patch{
		IsPlaying:    mo.Some(s.IsPlaying),
		CurrentTime:  mo.Some(s.CurrentTime),
		Duration:     mo.Some(s.Duration),
		Volume:       mo.Some(s.Volume),
		IsMuted:      mo.Some(s.IsMuted),
		PlaybackRate: mo.Some(s.PlaybackRate),
	}
}

// Apply overlays the patch onto a snapshot and returns the result.
func (p Patch) Apply(s State) State {
	s.IsPlaying = p.IsPlaying.OrElse(s.IsPlaying)
	s.CurrentTime = p.CurrentTime.OrElse(s.CurrentTime)
	s.Duration = p.Duration.OrElse(s.Duration)
	s.Volume = p.Volume.OrElse(s.Volume)
	s.IsMuted = p.IsMuted.OrElse(s.IsMuted)
	s.PlaybackRate = p.PlaybackRate.OrElse(s.PlaybackRate)
	return s
}

// Get returns the patched value for a field and whether the patch sets it.
func (p Patch) Get(f Field) (any, bool) {
	switch f {
	case FieldIsPlaying:
		if v, ok := p.IsPlaying.Get(); ok {
			return v, true
		}
	case FieldCurrentTime:
		if v, ok := p.CurrentTime.Get(); ok {
			return v, true
		}
	case FieldDuration:
		if v, ok := p.Duration.Get(); ok {
			return v, true
		}
	case FieldVolume:
		if v, ok := p.Volume.Get(); ok {
			return v, true
		}
	case FieldIsMuted:
		if v, ok := p.IsMuted.Get(); ok {
			return v, true
		}
	case FieldPlaybackRate:
		if v, ok := p.PlaybackRate.Get(); ok {
			return v, true
		}
	}
	return nil, false
}

// IsEmpty reports whether the patch sets no fields at all.
func (p Patch) IsEmpty() bool {
	for _, f := range Fields() {
		if _, ok := p.Get(f); ok {
			return false
		}
	}
	return true
}
