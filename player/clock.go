package player

import (
	"fmt"
	"sync"

	"github.com/samber/mo"
	"github.com/unpuzzle-app/unpuzzle/log"
	"github.com/unpuzzle-app/unpuzzle/playback"
)

// Status enumerates the clock's playback lifecycle states.
type Status int

const (
	// Idle means no media has started playing yet.
	Idle Status = iota
	// Playing means the player is actively advancing.
	Playing
	// Paused means playback is suspended and can resume.
	Paused
	// Ended means the media ran to completion. It behaves like Paused for
	// all purposes except the one-shot completion signal; a further Play
	// re-enters Playing.
	Ended
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Event is a lifecycle notification emitted by the clock for higher-level
// consumers (the agent session controller, progress tracking).
type Event struct {
	Type  EventType
	State playback.State
}

// EventType discriminates clock events.
type EventType int

const (
	// EventPlayed fires when playback starts or resumes.
	EventPlayed EventType = iota
	// EventManuallyPaused fires when the user suspends playback, as opposed
	// to a programmatic pause (checkpoint gate).
	EventManuallyPaused
	// EventEnded fires once per playthrough when the media completes.
	EventEnded
)

func (t EventType) String() string {
	switch t {
	case EventPlayed:
		return "played"
	case EventManuallyPaused:
		return "manually-paused"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// ClockName is the clock's origin identifier in tracker records and
// coordinator writes.
const ClockName = "clock"

// observerName is the registration name of the clock's media observer source.
const observerName = "media"

// Clock wraps a playback backend and funnels its native events, deduplicated
// by the tracker, into the coordinator. Commands mutate the backend directly
// and then optimistically push the resulting state forward, so the UI never
// waits for the property change to round-trip through the player process.
type Clock struct {
	player  Player
	coord   *playback.Coordinator
	tracker *playback.Tracker

	mu        sync.Mutex
	status    Status
	completed bool
	closed    bool
	listener  *EventListener
	events    chan Event
}

// NewClock creates a clock over the given backend. The clock registers a
// read-only media observer with the coordinator so reconciliation can detect
// drift between the player process and the canonical store.
func NewClock(p Player, coord *playback.Coordinator, tracker *playback.Tracker) *Clock {
	c := &Clock{
		player:  p,
		coord:   coord,
		tracker: tracker,
		events:  make(chan Event, 16),
	}
	coord.Register(&mediaSource{player: p})
	return c
}

// Events returns the clock's lifecycle notification channel.
func (c *Clock) Events() <-chan Event {
	return c.events
}

// Status returns the current lifecycle state.
func (c *Clock) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Start begins observing the backend's property change events. The backend's
// socket acquisition already polls with a bounded retry; a failure here
// leaves the feature degraded but never crashes the player.
func (c *Clock) Start() error {
	listener := NewEventListener(c.player.Socket(), c.handleEvent)
	if err := listener.Start(); err != nil {
		log.Warnf("clock: event listener unavailable, state coordination degraded: %v", err)
		return err
	}
	c.mu.Lock()
	c.listener = listener
	c.mu.Unlock()
	return nil
}

// Play resumes playback and optimistically marks the state playing.
func (c *Clock) Play() error {
	if err := c.player.Set("pause", false); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	c.transition(Playing)
	c.push(playback.FieldIsPlaying, true, playback.Patch{IsPlaying: mo.Some(true)})
	c.emit(EventPlayed)
	return nil
}

// Pause suspends playback at the user's request.
func (c *Clock) Pause() error {
	return c.pause(true)
}

// AutoPause suspends playback programmatically (checkpoint gates), without
// signaling a manual pause to downstream consumers.
func (c *Clock) AutoPause() error {
	return c.pause(false)
}

func (c *Clock) pause(manual bool) error {
	if err := c.player.Set("pause", true); err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	c.transition(Paused)
	c.push(playback.FieldIsPlaying, false, playback.Patch{IsPlaying: mo.Some(false)})
	if manual {
		c.emit(EventManuallyPaused)
	}
	return nil
}

// Toggle flips between playing and paused.
func (c *Clock) Toggle() error {
	if c.Status() == Playing {
		return c.Pause()
	}
	return c.Play()
}

// Seek moves playback to an absolute position, clamped to the known media
// bounds, and pushes the new position forward.
func (c *Clock) Seek(seconds float64) error {
	target := c.clamp(seconds)
	if err := c.player.Seek(target); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	c.push(playback.FieldCurrentTime, target, playback.Patch{CurrentTime: mo.Some(target)})
	return nil
}

// Skip seeks relative to the current position. The target is clamped to
// [0, duration], using the coordinator's cached duration when the backend has
// not reported one yet.
func (c *Clock) Skip(delta float64) error {
	return c.Seek(c.coord.State().CurrentTime + delta)
}

// SetVolume sets the playback volume in [0, 1].
func (c *Clock) SetVolume(v float64) error {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	// mpv expresses volume as a 0-100 percentage.
	if err := c.player.Set("volume", v*100); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}
	c.push(playback.FieldVolume, v, playback.Patch{Volume: mo.Some(v)})
	return nil
}

// SetMuted sets the mute flag independently of the volume level.
func (c *Clock) SetMuted(muted bool) error {
	if err := c.player.Set("mute", muted); err != nil {
		return fmt.Errorf("set mute: %w", err)
	}
	c.push(playback.FieldIsMuted, muted, playback.Patch{IsMuted: mo.Some(muted)})
	return nil
}

// ToggleMute flips the mute flag based on the canonical state.
func (c *Clock) ToggleMute() error {
	return c.SetMuted(!c.coord.State().IsMuted)
}

// SetPlaybackRate sets the playback speed multiplier.
func (c *Clock) SetPlaybackRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("set rate: rate must be positive, got %v", rate)
	}
	if err := c.player.Set("speed", rate); err != nil {
		return fmt.Errorf("set rate: %w", err)
	}
	c.push(playback.FieldPlaybackRate, rate, playback.Patch{PlaybackRate: mo.Some(rate)})
	return nil
}

// Close tears down the listener, unregisters the media observer and clears
// tracker state. The events channel is closed only after the listener has
// joined its read loop, so no property event can race the close.
func (c *Clock) Close() {
	c.mu.Lock()
	listener := c.listener
	c.listener = nil
	c.mu.Unlock()

	if listener != nil {
		listener.Stop()
	}
	c.coord.Unregister(observerName)
	c.tracker.Clear()

	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	c.mu.Unlock()
}

// handleEvent receives raw property change notifications from the backend
// and funnels them, deduplicated, into the coordinator.
func (c *Clock) handleEvent(property string, data interface{}) {
	switch property {
	case "time-pos":
		if v, ok := data.(float64); ok {
			c.push(playback.FieldCurrentTime, v, playback.Patch{CurrentTime: mo.Some(v)})
		}
	case "duration":
		if v, ok := data.(float64); ok {
			c.push(playback.FieldDuration, v, playback.Patch{Duration: mo.Some(v)})
		}
	case "pause":
		if paused, ok := data.(bool); ok {
			if paused {
				if c.Status() == Playing {
					c.transition(Paused)
					c.emit(EventManuallyPaused)
				}
			} else if c.Status() != Playing {
				// A resume echoed back for our own Play command has already
				// been signalled optimistically.
				c.transition(Playing)
				c.emit(EventPlayed)
			}
			c.push(playback.FieldIsPlaying, !paused, playback.Patch{IsPlaying: mo.Some(!paused)})
		}
	case "volume":
		if v, ok := data.(float64); ok {
			c.push(playback.FieldVolume, v/100, playback.Patch{Volume: mo.Some(v / 100)})
		}
	case "mute":
		if v, ok := data.(bool); ok {
			c.push(playback.FieldIsMuted, v, playback.Patch{IsMuted: mo.Some(v)})
		}
	case "speed":
		if v, ok := data.(float64); ok {
			c.push(playback.FieldPlaybackRate, v, playback.Patch{PlaybackRate: mo.Some(v)})
		}
	case "eof-reached":
		if reached, ok := data.(bool); ok && reached {
			c.complete()
		}
	}
}

// push runs an update through the tracker and forwards it to the coordinator
// unless it was suppressed as a duplicate.
func (c *Clock) push(field playback.Field, value any, patch playback.Patch) {
	if c.tracker.TrackUpdate(field, value, ClockName) {
		return
	}
	c.coord.SetState(patch, ClockName)
}

// transition moves the lifecycle state machine. Re-entering Playing from
// Ended starts a fresh playthrough, re-arming the completion signal.
func (c *Clock) transition(next Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if next == Playing && c.status == Ended {
		c.completed = false
	}
	c.status = next
}

// complete moves to Ended and signals completion exactly once per
// playthrough.
func (c *Clock) complete() {
	c.mu.Lock()
	alreadySignalled := c.completed
	c.completed = true
	c.status = Ended
	c.mu.Unlock()

	c.push(playback.FieldIsPlaying, false, playback.Patch{IsPlaying: mo.Some(false)})
	if !alreadySignalled {
		c.emit(EventEnded)
	}
}

// emit delivers a lifecycle event without blocking the caller. Events arriving
// after Close are dropped rather than sent on the closed channel.
func (c *Clock) emit(t EventType) {
	state := c.coord.State()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- Event{Type: t, State: state}:
	default:
		log.Warnf("clock: dropped %s event: consumer lagging", t)
	}
}

// mediaSource is the read-only coordinator source backed by live backend
// queries, giving reconciliation an independent view of the player process.
type mediaSource struct {
	player Player
}

func (m *mediaSource) Name() string        { return observerName }
func (m *mediaSource) Kind() playback.Kind { return playback.KindMediaObserver }

// State reports only the fields the backend can answer right now. Query
// failures (nothing loaded, process gone) simply narrow the patch.
func (m *mediaSource) State() playback.Patch {
	var p playback.Patch
	if !m.player.IsRunning() {
		return p
	}
	if pos, err := m.player.GetTimePos(); err == nil {
		p.CurrentTime = mo.Some(pos)
	}
	if dur, err := m.player.GetDuration(); err == nil {
		p.Duration = mo.Some(dur)
	}
	if paused, err := m.player.GetPausedStatus(); err == nil {
		p.IsPlaying = mo.Some(!paused)
	}
	return p
}

// clamp bounds a seek target to [0, duration]. A zero duration means the
// backend has not reported one, so only the lower bound applies.
func (c *Clock) clamp(seconds float64) float64 {
	if seconds < 0 {
		return 0
	}
	duration := c.coord.State().Duration
	if dur, err := c.player.GetDuration(); err == nil && dur > 0 {
		duration = dur
	}
	if duration > 0 && seconds > duration {
		return duration
	}
	return seconds
}
