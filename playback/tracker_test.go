package playback

import (
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTracker(t *testing.T) {
	Convey("Given a tracker with a 100ms duplicate window", t, func() {
		tracker := NewTrackerWithThreshold(100 * time.Millisecond)

		now := time.Unix(1700000000, 0)
		tracker.now = func() time.Time { return now }
		advance := func(d time.Duration) { now = now.Add(d) }

		Convey("The first update for a field always passes", func() {
			So(tracker.TrackUpdate(FieldCurrentTime, 1.0, "clock"), ShouldBeFalse)
		})

		Convey("An identical value within the window is suppressed", func() {
			tracker.TrackUpdate(FieldCurrentTime, 1.0, "clock")

			Convey("from the same source (redundant re-emission)", func() {
				advance(50 * time.Millisecond)
				So(tracker.TrackUpdate(FieldCurrentTime, 1.0, "clock"), ShouldBeTrue)
			})

			Convey("from a different source (echo)", func() {
				advance(50 * time.Millisecond)
				So(tracker.TrackUpdate(FieldCurrentTime, 1.0, "store"), ShouldBeTrue)
			})
		})

		Convey("An identical value at or past the window passes", func() {
			tracker.TrackUpdate(FieldCurrentTime, 1.0, "clock")
			advance(100 * time.Millisecond)
			So(tracker.TrackUpdate(FieldCurrentTime, 1.0, "clock"), ShouldBeFalse)
		})

		Convey("A different value always passes regardless of timing", func() {
			tracker.TrackUpdate(FieldCurrentTime, 1.0, "clock")
			advance(1 * time.Millisecond)
			So(tracker.TrackUpdate(FieldCurrentTime, 1.1, "clock"), ShouldBeFalse)
		})

		Convey("Duplicate checks compare against the most recent record", func() {
			tracker.TrackUpdate(FieldVolume, 0.5, "clock")
			advance(10 * time.Millisecond)
			tracker.TrackUpdate(FieldVolume, 0.7, "clock")
			advance(10 * time.Millisecond)
			// 0.5 matches an older record, but not the immediately prior one.
			So(tracker.TrackUpdate(FieldVolume, 0.5, "clock"), ShouldBeFalse)
		})

		Convey("Fields are tracked independently", func() {
			tracker.TrackUpdate(FieldIsPlaying, true, "clock")
			advance(10 * time.Millisecond)
			So(tracker.TrackUpdate(FieldIsMuted, true, "clock"), ShouldBeFalse)
		})

		Convey("History is bounded", func() {
			for i := 0; i < historyCap*2; i++ {
				tracker.TrackUpdate(FieldCurrentTime, float64(i), "clock")
				advance(time.Millisecond)
			}
			stats := tracker.Stats()
			So(stats.Total, ShouldEqual, historyCap*2)
			So(stats.Recent, ShouldHaveLength, recentCount)
			So(tracker.history, ShouldHaveLength, historyCap)
		})

		Convey("Stats aggregates by field and source", func() {
			tracker.TrackUpdate(FieldCurrentTime, 1.0, "clock")
			advance(200 * time.Millisecond)
			tracker.TrackUpdate(FieldCurrentTime, 2.0, "store")
			advance(200 * time.Millisecond)
			tracker.TrackUpdate(FieldVolume, 0.3, "clock")

			stats := tracker.Stats()
			So(stats.ByField[FieldCurrentTime], ShouldEqual, 2)
			So(stats.ByField[FieldVolume], ShouldEqual, 1)
			So(stats.BySource["clock"], ShouldEqual, 2)
			So(stats.BySource["store"], ShouldEqual, 1)
		})

		Convey("Clear empties all tracked state", func() {
			for i := 0; i < 5; i++ {
				tracker.TrackUpdate(FieldCurrentTime, float64(i), fmt.Sprintf("src-%d", i))
				advance(time.Millisecond)
			}
			tracker.Clear()

			stats := tracker.Stats()
			So(stats.Total, ShouldEqual, 0)
			So(stats.Recent, ShouldBeEmpty)
			So(stats.ByField, ShouldBeEmpty)
			So(stats.BySource, ShouldBeEmpty)

			Convey("and a previously seen value passes again", func() {
				So(tracker.TrackUpdate(FieldCurrentTime, 4.0, "src-4"), ShouldBeFalse)
			})
		})
	})
}
