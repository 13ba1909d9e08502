// Package session wires a single video playthrough together: the playback
// backend, the state coordination core, the transcript selection model,
// checkpoint gating and agent reporting.
package session

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/spf13/viper"
	"github.com/unpuzzle-app/unpuzzle/agent"
	"github.com/unpuzzle-app/unpuzzle/checkpoint"
	"github.com/unpuzzle-app/unpuzzle/course"
	"github.com/unpuzzle-app/unpuzzle/history"
	"github.com/unpuzzle-app/unpuzzle/key"
	"github.com/unpuzzle-app/unpuzzle/log"
	"github.com/unpuzzle-app/unpuzzle/playback"
	"github.com/unpuzzle-app/unpuzzle/player"
	"github.com/unpuzzle-app/unpuzzle/selection"
	"github.com/unpuzzle-app/unpuzzle/transcript"
)

// Session owns the live objects of one watch session. All fields are wired
// by Start and stay valid until Close.
type Session struct {
	Video       *course.Video
	Player      player.Player
	Clock       *player.Clock
	Coordinator *playback.Coordinator
	Tracker     *playback.Tracker
	Selection   *selection.Model
	Agent       *agent.Session
	Transcript  *transcript.Transcript
	Checkpoints []checkpoint.Checkpoint

	resolver *selection.Resolver
	gates    chan checkpoint.Checkpoint

	mu            sync.Mutex
	closed        bool
	fired         map[string]bool
	maxPercentage float64
	intersected   []transcript.Segment
}

// Start launches the player on the given video and assembles the
// coordination core around it. Missing transcripts and unreachable
// checkpoint data degrade the respective features without failing the
// session.
func Start(video *course.Video) (*Session, error) {
	store := playback.NewStore()
	coordinator := playback.NewCoordinator(store)
	tracker := playback.NewTracker()
	playback.ExposeForDebug(coordinator, tracker)

	s := &Session{
		Video:       video,
		Coordinator: coordinator,
		Tracker:     tracker,
		Selection:   selection.NewModel(),
		gates:       make(chan checkpoint.Checkpoint, 8),
		fired:       make(map[string]bool),
	}

	s.Transcript, _ = transcript.Get(video.ID)
	s.Checkpoints, _ = checkpoint.GetVideoCheckpoints(video.ID)

	if viper.GetString(key.Player) == "iina" && runtime.GOOS == "darwin" {
		s.Player = player.NewIINA()
	} else {
		s.Player = player.NewMPV()
	}

	title := video.String()
	if err := s.Player.Play(video.URL, title, nil); err != nil {
		return nil, fmt.Errorf("launch player: %w", err)
	}

	s.Clock = player.NewClock(s.Player, coordinator, tracker)
	if err := s.Clock.Start(); err != nil {
		log.Warnf("session: running without live state events: %v", err)
	}

	s.Agent = agent.NewSession(video.ID, coordinator, s.Selection, agent.HTTPDispatcher{})
	go s.Agent.Consume(s.Clock.Events())

	s.resolver = selection.NewResolver(s.resolveSelection, s.deliverSelection)

	s.Player.StartIPCTicker(s.tick)

	if viper.GetBool(key.HistorySaveOnWatch) {
		_ = history.Save(video, 0, 0)
	}

	return s, nil
}

// Gates emits each checkpoint exactly once when playback reaches its
// timestamp. The clock has already auto-paused by the time a gate is
// delivered.
func (s *Session) Gates() <-chan checkpoint.Checkpoint {
	return s.gates
}

// OfferSelection schedules transcript text for throttled range resolution.
// Rapid successive offers collapse into the latest one. intersected lists the
// transcript segments the visual selection actually touched; it backs the
// rendering-surface fallback when text matching fails and may be empty, in
// which case an unmatched selection quietly resolves to nothing.
func (s *Session) OfferSelection(text string, intersected []transcript.Segment) {
	s.mu.Lock()
	s.intersected = intersected
	s.mu.Unlock()
	s.resolver.Offer(text)
}

// tick runs on the player's polling interval: it tracks the maximum watched
// percentage and fires due checkpoint gates.
func (s *Session) tick(pos, dur int) {
	if dur > 0 {
		p := float64(pos) / float64(dur) * 100
		s.mu.Lock()
		if p > s.maxPercentage {
			s.maxPercentage = p
		}
		s.mu.Unlock()
	}

	for _, cp := range s.Checkpoints {
		if float64(pos) < cp.Time {
			continue
		}

		s.mu.Lock()
		if s.closed || s.fired[cp.ID] {
			s.mu.Unlock()
			continue
		}
		s.fired[cp.ID] = true

		if err := s.Clock.AutoPause(); err != nil {
			log.Warnf("session: checkpoint pause failed: %v", err)
		}
		select {
		case s.gates <- cp:
		default:
			log.Warnf("session: dropped checkpoint gate %s", cp.ID)
		}
		s.mu.Unlock()
	}
}

// resolveSelection maps selected transcript text to a time range using the
// session transcript. The fallback lookup answers with only the segments the
// last offer recorded as visually intersected, so a selection no strategy can
// place resolves to nil instead of the whole video's bounds.
func (s *Session) resolveSelection(text string) *selection.TranscriptSelection {
	if s.Transcript == nil {
		return nil
	}
	return selection.ResolveRange(text, s.Transcript.Segments, func(string) []transcript.Segment {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.intersected
	})
}

// deliverSelection lands a resolved range in the model and reports it.
func (s *Session) deliverSelection(sel *selection.TranscriptSelection) {
	if sel == nil {
		return
	}
	s.Agent.UpdateSegment(sel)
	s.Agent.SetInPoint(sel.StartTime)
	s.Agent.SetOutPoint(sel.EndTime)
}

// MaxPercentage returns the highest watched percentage observed so far.
func (s *Session) MaxPercentage() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxPercentage
}

// Close persists the watch progress and tears the session down. The gate
// channel is closed so pending receivers unblock.
func (s *Session) Close() {
	position, _ := s.Player.GetTimePos()

	s.resolver.Stop()
	s.Player.StopIPCTicker()

	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.gates)
	}
	s.mu.Unlock()

	s.Clock.Close()
	if err := s.Player.Close(); err != nil {
		log.Warnf("session: player close failed: %v", err)
	}

	if viper.GetBool(key.HistorySaveOnWatch) {
		if err := history.Save(s.Video, position, s.MaxPercentage()); err != nil {
			log.Warnf("session: history save failed: %v", err)
		}
	}
}
