package player

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/unpuzzle-app/unpuzzle/playback"
)

// fakePlayer is an in-memory backend that records commands instead of
// spawning a process.
type fakePlayer struct {
	running    bool
	paused     bool
	timePos    float64
	duration   float64
	properties map[string]interface{}
	seeks      []float64
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{
		running:    true,
		paused:     true,
		duration:   120,
		properties: make(map[string]interface{}),
	}
}

func (f *fakePlayer) Play(url, title string, headers map[string]string) error { return nil }
func (f *fakePlayer) TogglePause() error {
	f.paused = !f.paused
	return nil
}
func (f *fakePlayer) GetTimePos() (float64, error)  { return f.timePos, nil }
func (f *fakePlayer) GetDuration() (float64, error) { return f.duration, nil }
func (f *fakePlayer) GetPercentWatched() (float64, error) {
	if f.duration == 0 {
		return 0, nil
	}
	return f.timePos / f.duration * 100, nil
}
func (f *fakePlayer) GetPausedStatus() (bool, error)   { return f.paused, nil }
func (f *fakePlayer) HasActivePlayback() (bool, error) { return f.running, nil }
func (f *fakePlayer) Seek(seconds float64) error {
	f.seeks = append(f.seeks, seconds)
	f.timePos = seconds
	return nil
}
func (f *fakePlayer) Set(property string, value interface{}) error {
	f.properties[property] = value
	if property == "pause" {
		f.paused = value.(bool)
	}
	return nil
}
func (f *fakePlayer) IsRunning() bool { return f.running }
func (f *fakePlayer) Close() error {
	f.running = false
	return nil
}
func (f *fakePlayer) Socket() string                                 { return "" }
func (f *fakePlayer) StartIPCTicker(func(timePos int, duration int)) {}
func (f *fakePlayer) StopIPCTicker()                                 {}
func (f *fakePlayer) Wait() <-chan struct{}                          { return nil }

func newTestClock() (*Clock, *fakePlayer, *playback.Coordinator) {
	fake := newFakePlayer()
	coord := playback.NewCoordinator(playback.NewStore())
	tracker := playback.NewTrackerWithThreshold(100 * time.Millisecond)
	return NewClock(fake, coord, tracker), fake, coord
}

func drain(c *Clock) []Event {
	var events []Event
	for {
		select {
		case e := <-c.Events():
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestClockCommands(t *testing.T) {
	Convey("Given a clock over a fake backend", t, func() {
		clock, fake, coord := newTestClock()

		Convey("Play resumes the backend and pushes the state", func() {
			So(clock.Play(), ShouldBeNil)

			So(fake.paused, ShouldBeFalse)
			So(coord.State().IsPlaying, ShouldBeTrue)
			So(clock.Status(), ShouldEqual, Playing)

			events := drain(clock)
			So(events, ShouldHaveLength, 1)
			So(events[0].Type, ShouldEqual, EventPlayed)
		})

		Convey("Pause suspends the backend and signals a manual pause", func() {
			So(clock.Play(), ShouldBeNil)
			drain(clock)

			So(clock.Pause(), ShouldBeNil)

			So(fake.paused, ShouldBeTrue)
			So(coord.State().IsPlaying, ShouldBeFalse)
			So(clock.Status(), ShouldEqual, Paused)

			events := drain(clock)
			So(events, ShouldHaveLength, 1)
			So(events[0].Type, ShouldEqual, EventManuallyPaused)
		})

		Convey("AutoPause suspends without a manual pause event", func() {
			So(clock.Play(), ShouldBeNil)
			drain(clock)

			So(clock.AutoPause(), ShouldBeNil)

			So(clock.Status(), ShouldEqual, Paused)
			So(drain(clock), ShouldBeEmpty)
		})

		Convey("Toggle flips between playing and paused", func() {
			So(clock.Toggle(), ShouldBeNil)
			So(clock.Status(), ShouldEqual, Playing)

			So(clock.Toggle(), ShouldBeNil)
			So(clock.Status(), ShouldEqual, Paused)
		})

		Convey("Seek clamps to the media bounds", func() {
			So(clock.Seek(-5), ShouldBeNil)
			So(fake.seeks[0], ShouldEqual, 0)

			So(clock.Seek(500), ShouldBeNil)
			So(fake.seeks[1], ShouldEqual, 120)

			So(clock.Seek(30), ShouldBeNil)
			So(fake.seeks[2], ShouldEqual, 30)
			So(coord.State().CurrentTime, ShouldEqual, 30)
		})

		Convey("Skip seeks relative to the coordinated position", func() {
			So(clock.Seek(30), ShouldBeNil)

			So(clock.Skip(10), ShouldBeNil)
			So(coord.State().CurrentTime, ShouldEqual, 40)

			So(clock.Skip(-100), ShouldBeNil)
			So(coord.State().CurrentTime, ShouldEqual, 0)
		})

		Convey("SetVolume scales to the backend's percentage range", func() {
			So(clock.SetVolume(0.5), ShouldBeNil)

			So(fake.properties["volume"], ShouldEqual, 50.0)
			So(coord.State().Volume, ShouldEqual, 0.5)
		})

		Convey("SetVolume clamps to [0, 1]", func() {
			So(clock.SetVolume(1.5), ShouldBeNil)
			So(coord.State().Volume, ShouldEqual, 1.0)

			So(clock.SetVolume(-0.2), ShouldBeNil)
			So(coord.State().Volume, ShouldEqual, 0.0)
		})

		Convey("SetMuted and ToggleMute track the mute flag", func() {
			So(clock.SetMuted(true), ShouldBeNil)
			So(coord.State().IsMuted, ShouldBeTrue)

			So(clock.ToggleMute(), ShouldBeNil)
			So(coord.State().IsMuted, ShouldBeFalse)
		})

		Convey("SetPlaybackRate rejects non-positive rates", func() {
			So(clock.SetPlaybackRate(0), ShouldNotBeNil)
			So(clock.SetPlaybackRate(-1), ShouldNotBeNil)

			So(clock.SetPlaybackRate(1.5), ShouldBeNil)
			So(coord.State().PlaybackRate, ShouldEqual, 1.5)
		})
	})
}

func TestClockEvents(t *testing.T) {
	Convey("Given a clock receiving backend property events", t, func() {
		clock, _, coord := newTestClock()

		Convey("time-pos updates flow into the coordinator", func() {
			clock.handleEvent("time-pos", 42.5)

			So(coord.State().CurrentTime, ShouldEqual, 42.5)
		})

		Convey("volume events are normalized from percentages", func() {
			clock.handleEvent("volume", 80.0)

			So(coord.State().Volume, ShouldEqual, 0.8)
		})

		Convey("pause events drive the state machine", func() {
			clock.handleEvent("pause", false)

			So(clock.Status(), ShouldEqual, Playing)
			So(coord.State().IsPlaying, ShouldBeTrue)

			clock.handleEvent("pause", true)

			So(clock.Status(), ShouldEqual, Paused)
			So(coord.State().IsPlaying, ShouldBeFalse)
		})

		Convey("a pause event while already paused emits nothing", func() {
			clock.handleEvent("pause", true)

			So(clock.Status(), ShouldEqual, Idle)
			So(drain(clock), ShouldBeEmpty)
		})

		Convey("eof-reached signals completion exactly once", func() {
			clock.handleEvent("pause", false)
			drain(clock)

			clock.handleEvent("eof-reached", true)
			clock.handleEvent("eof-reached", true)

			So(clock.Status(), ShouldEqual, Ended)
			events := drain(clock)
			So(events, ShouldHaveLength, 1)
			So(events[0].Type, ShouldEqual, EventEnded)
		})

		Convey("resuming after completion re-arms the signal", func() {
			clock.handleEvent("pause", false)
			clock.handleEvent("eof-reached", true)
			drain(clock)

			clock.handleEvent("pause", false)
			drain(clock)
			clock.handleEvent("eof-reached", true)

			events := drain(clock)
			So(events, ShouldHaveLength, 1)
			So(events[0].Type, ShouldEqual, EventEnded)
		})

		Convey("unknown properties are ignored", func() {
			clock.handleEvent("seeking", true)

			So(clock.Status(), ShouldEqual, Idle)
		})

		Convey("a resume echoed back for our own Play is not signalled twice", func() {
			So(clock.Play(), ShouldBeNil)
			clock.handleEvent("pause", false)

			events := drain(clock)
			So(events, ShouldHaveLength, 1)
			So(events[0].Type, ShouldEqual, EventPlayed)
		})

		Convey("a resume while paused still signals", func() {
			So(clock.Play(), ShouldBeNil)
			So(clock.Pause(), ShouldBeNil)
			drain(clock)

			clock.handleEvent("pause", false)

			events := drain(clock)
			So(events, ShouldHaveLength, 1)
			So(events[0].Type, ShouldEqual, EventPlayed)
		})
	})
}

func TestClockClose(t *testing.T) {
	Convey("Given a clock being torn down", t, func() {
		Convey("events still in flight during Close are dropped, not sent", func() {
			clock, _, _ := newTestClock()

			done := make(chan struct{})
			go func() {
				defer close(done)
				for i := 0; i < 200; i++ {
					clock.handleEvent("pause", i%2 == 0)
					clock.handleEvent("time-pos", float64(i))
				}
			}()

			clock.Close()
			<-done
		})

		Convey("events arriving after Close are dropped", func() {
			clock, _, _ := newTestClock()
			clock.Close()

			So(func() { clock.handleEvent("pause", false) }, ShouldNotPanic)
			So(func() { clock.handleEvent("eof-reached", true) }, ShouldNotPanic)
		})

		Convey("Close is idempotent", func() {
			clock, _, _ := newTestClock()

			So(func() {
				clock.Close()
				clock.Close()
			}, ShouldNotPanic)
		})
	})
}
