package agent

import (
	"time"

	"github.com/unpuzzle-app/unpuzzle/log"
	"github.com/unpuzzle-app/unpuzzle/playback"
	"github.com/unpuzzle-app/unpuzzle/player"
	"github.com/unpuzzle-app/unpuzzle/selection"
)

// Session turns playback lifecycle events and selection edits into protocol
// actions for a single video. Every action's payload is snapshotted at
// dispatch time: the playback position and playing flag come from one
// coordinator read, and both selection endpoints come from one model read.
type Session struct {
	videoID    string
	coord      *playback.Coordinator
	selection  *selection.Model
	dispatcher Dispatcher

	now func() time.Time
}

// NewSession wires a session over the shared coordinator and selection
// model.
func NewSession(videoID string, coord *playback.Coordinator, sel *selection.Model, dispatcher Dispatcher) *Session {
	return &Session{
		videoID:    videoID,
		coord:      coord,
		selection:  sel,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Consume translates clock lifecycle events into actions until the channel
// closes. Run it in its own goroutine.
func (s *Session) Consume(events <-chan player.Event) {
	for event := range events {
		switch event.Type {
		case player.EventPlayed:
			s.dispatch(Action{
				Type:     VideoPlayed,
				Playback: &PlaybackSnapshot{CurrentTime: event.State.CurrentTime, IsPlaying: event.State.IsPlaying},
			})
		case player.EventManuallyPaused:
			s.dispatch(Action{
				Type:     VideoManuallyPaused,
				Playback: &PlaybackSnapshot{CurrentTime: event.State.CurrentTime, IsPlaying: event.State.IsPlaying},
			})
		}
	}
}

// SetInPoint moves the selection in point and reports the resulting range.
func (s *Session) SetInPoint(t float64) {
	s.selection.SetInPoint(t)
	s.dispatch(Action{Type: SetInPoint, Range: s.rangeSnapshot()})
}

// SetOutPoint moves the selection out point and reports the resulting range.
func (s *Session) SetOutPoint(t float64) {
	s.selection.SetOutPoint(t)
	s.dispatch(Action{Type: SetOutPoint, Range: s.rangeSnapshot()})
}

// SendSegment reports the currently selected transcript segment to the
// agent conversation. A session without a resolved segment sends nothing.
func (s *Session) SendSegment() {
	segment := s.segmentSnapshot()
	if segment == nil {
		return
	}
	s.dispatch(Action{Type: SendSegmentToChat, Segment: segment, Range: s.rangeSnapshot()})
}

// UpdateSegment replaces the selection's transcript segment and reports it.
func (s *Session) UpdateSegment(sel *selection.TranscriptSelection) {
	s.selection.SetTranscriptSelection(sel)
	s.dispatch(Action{Type: UpdateSegment, Segment: s.segmentSnapshot(), Range: s.rangeSnapshot()})
}

// ClearSegment resets the selection and notifies the agent.
func (s *Session) ClearSegment() {
	s.selection.Clear()
	s.dispatch(Action{Type: ClearSegment})
}

// ButtonClicked reports an interaction with a named agent prompt button.
func (s *Session) ButtonClicked(button string) {
	state := s.coord.State()
	s.dispatch(Action{
		Type:     AgentButtonClicked,
		Button:   button,
		Playback: &PlaybackSnapshot{CurrentTime: state.CurrentTime, IsPlaying: state.IsPlaying},
	})
}

// QuizAnswered reports the answer selected at a quiz checkpoint.
func (s *Session) QuizAnswered(checkpointID, answer string, correct bool) {
	s.dispatch(Action{
		Type:       QuizAnswerSelected,
		Checkpoint: &CheckpointResponse{CheckpointID: checkpointID, Answer: answer, Correct: correct},
	})
}

// ReflectionGiven reports a reflection response.
func (s *Session) ReflectionGiven(checkpointID, text string) {
	s.dispatch(Action{
		Type:       ReflectionSubmitted,
		Checkpoint: &CheckpointResponse{CheckpointID: checkpointID, Text: text},
	})
}

func (s *Session) dispatch(action Action) {
	action.VideoID = s.videoID
	action.At = s.now().Unix()

	if err := s.dispatcher.Dispatch(action); err != nil {
		log.Warnf("agent: could not deliver %s: %v", action.Type, err)
	}
}

// rangeSnapshot reads both selection endpoints in one model access.
func (s *Session) rangeSnapshot() *RangeSnapshot {
	in, out := s.selection.Range()
	if in.IsAbsent() && out.IsAbsent() {
		return nil
	}
	return &RangeSnapshot{InPoint: in.OrElse(0), OutPoint: out.OrElse(0)}
}

func (s *Session) segmentSnapshot() *SegmentSnapshot {
	sel := s.selection.TranscriptSelection()
	if sel == nil {
		return nil
	}
	return &SegmentSnapshot{Text: sel.Text, StartTime: sel.StartTime, EndTime: sel.EndTime}
}
