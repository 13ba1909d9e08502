package agent

import (
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/unpuzzle-app/unpuzzle/playback"
	"github.com/unpuzzle-app/unpuzzle/player"
	"github.com/unpuzzle-app/unpuzzle/selection"
)

// recorder captures dispatched actions in order.
type recorder struct {
	actions []Action
}

func (r *recorder) Dispatch(action Action) error {
	r.actions = append(r.actions, action)
	return nil
}

func (r *recorder) last() Action {
	return r.actions[len(r.actions)-1]
}

func newTestSession() (*Session, *recorder, *playback.Coordinator) {
	rec := &recorder{}
	coord := playback.NewCoordinator(playback.NewStore())
	return NewSession("vid-1", coord, selection.NewModel(), rec), rec, coord
}

func TestSessionSelectionActions(t *testing.T) {
	Convey("Given a session over a fresh selection", t, func() {
		session, rec, _ := newTestSession()

		Convey("SetInPoint reports the normalized range", func() {
			session.SetInPoint(10)

			So(rec.actions, ShouldHaveLength, 1)
			So(rec.last().Type, ShouldEqual, SetInPoint)
			So(rec.last().VideoID, ShouldEqual, "vid-1")
			So(rec.last().Range.InPoint, ShouldEqual, 10)
			So(rec.last().Range.OutPoint, ShouldEqual, 10)
		})

		Convey("SetOutPoint after SetInPoint reports both endpoints from one read", func() {
			session.SetInPoint(10)
			session.SetOutPoint(25)

			So(rec.last().Type, ShouldEqual, SetOutPoint)
			So(rec.last().Range.InPoint, ShouldEqual, 10)
			So(rec.last().Range.OutPoint, ShouldEqual, 25)
		})

		Convey("SendSegment without a resolved segment dispatches nothing", func() {
			session.SendSegment()

			So(rec.actions, ShouldBeEmpty)
		})

		Convey("UpdateSegment carries the segment and the range", func() {
			session.SetInPoint(4)
			session.SetOutPoint(10)
			session.UpdateSegment(&selection.TranscriptSelection{Text: "state machines", StartTime: 4, EndTime: 10})

			So(rec.last().Type, ShouldEqual, UpdateSegment)
			So(rec.last().Segment.Text, ShouldEqual, "state machines")
			So(rec.last().Range.OutPoint, ShouldEqual, 10)
		})

		Convey("SendSegment reports the stored segment", func() {
			session.UpdateSegment(&selection.TranscriptSelection{Text: "drift", StartTime: 10, EndTime: 16})
			session.SendSegment()

			So(rec.last().Type, ShouldEqual, SendSegmentToChat)
			So(rec.last().Segment.StartTime, ShouldEqual, 10)
		})

		Convey("ClearSegment resets the selection", func() {
			session.SetInPoint(4)
			session.ClearSegment()

			So(rec.last().Type, ShouldEqual, ClearSegment)
			So(rec.last().Range, ShouldBeNil)
			So(session.rangeSnapshot(), ShouldBeNil)
		})
	})
}

func TestSessionPlaybackActions(t *testing.T) {
	Convey("Given a session with coordinated playback state", t, func() {
		session, rec, coord := newTestSession()

		Convey("ButtonClicked snapshots position and playing flag together", func() {
			coord.SetState(playback.Patch{
				CurrentTime: mo.Some(33.0),
				IsPlaying:   mo.Some(true),
			}, "test")

			session.ButtonClicked("explain")

			So(rec.last().Type, ShouldEqual, AgentButtonClicked)
			So(rec.last().Button, ShouldEqual, "explain")
			So(rec.last().Playback.CurrentTime, ShouldEqual, 33.0)
			So(rec.last().Playback.IsPlaying, ShouldBeTrue)
		})

		Convey("QuizAnswered carries the checkpoint response", func() {
			session.QuizAnswered("cp-1", "B", true)

			So(rec.last().Type, ShouldEqual, QuizAnswerSelected)
			So(rec.last().Checkpoint.Answer, ShouldEqual, "B")
			So(rec.last().Checkpoint.Correct, ShouldBeTrue)
		})

		Convey("Consume translates clock lifecycle events", func() {
			events := make(chan player.Event, 2)
			events <- player.Event{Type: player.EventPlayed, State: playback.State{CurrentTime: 5, IsPlaying: true}}
			events <- player.Event{Type: player.EventManuallyPaused, State: playback.State{CurrentTime: 9}}
			close(events)

			session.Consume(events)

			So(rec.actions, ShouldHaveLength, 2)
			So(rec.actions[0].Type, ShouldEqual, VideoPlayed)
			So(rec.actions[0].Playback.CurrentTime, ShouldEqual, 5)
			So(rec.actions[1].Type, ShouldEqual, VideoManuallyPaused)
			So(rec.actions[1].Playback.IsPlaying, ShouldBeFalse)
		})

		Convey("ReflectionGiven carries the response text", func() {
			session.ReflectionGiven("cp-2", "the store owns canonical state")

			So(rec.last().Type, ShouldEqual, ReflectionSubmitted)
			So(rec.last().Checkpoint.Text, ShouldEqual, "the store owns canonical state")
		})
	})
}
