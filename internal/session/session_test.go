package session

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/unpuzzle-app/unpuzzle/transcript"
)

func TestResolveSelection(t *testing.T) {
	Convey("Given a session with a transcript", t, func() {
		segments := []transcript.Segment{
			{Text: "welcome to the course", Start: 0, End: 4},
			{Text: "today we cover goroutines", Start: 4, End: 9},
			{Text: "channels come afterwards", Start: 9, End: 15},
		}
		s := &Session{Transcript: &transcript.Transcript{Segments: segments}}

		Convey("exact text resolves inside the owning segment", func() {
			sel := s.resolveSelection("cover goroutines")

			So(sel, ShouldNotBeNil)
			So(sel.StartTime, ShouldBeGreaterThanOrEqualTo, 4.0)
			So(sel.EndTime, ShouldBeLessThanOrEqualTo, 9.0)
		})

		Convey("unmatched text falls back to the intersected segments", func() {
			s.intersected = segments[2:3]

			sel := s.resolveSelection("zzz qqq xxx")

			So(sel, ShouldNotBeNil)
			So(sel.StartTime, ShouldEqual, 9.0)
			So(sel.EndTime, ShouldEqual, 15.0)
		})

		Convey("unmatched text with no intersected segments resolves to nothing", func() {
			sel := s.resolveSelection("zzz qqq xxx")

			So(sel, ShouldBeNil)
		})

		Convey("a session without a transcript resolves to nothing", func() {
			bare := &Session{}

			So(bare.resolveSelection("anything"), ShouldBeNil)
		})
	})
}
