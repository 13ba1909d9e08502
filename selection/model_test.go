package selection

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestModel(t *testing.T) {
	Convey("Given an empty selection model", t, func() {
		m := NewModel()

		Convey("Both points start absent", func() {
			in, out := m.Range()
			So(in.IsAbsent(), ShouldBeTrue)
			So(out.IsAbsent(), ShouldBeTrue)
		})

		Convey("SetInPoint with no out-point defaults the out-point too", func() {
			m.SetInPoint(5)
			in, out := m.Range()
			So(in.MustGet(), ShouldEqual, 5)
			So(out.MustGet(), ShouldEqual, 5)
		})

		Convey("SetInPoint preserves a later out-point", func() {
			m.SetInPoint(5)
			m.SetOutPoint(10)
			m.SetInPoint(7)

			in, out := m.Range()
			So(in.MustGet(), ShouldEqual, 7)
			So(out.MustGet(), ShouldEqual, 10)
		})

		Convey("SetInPoint past the out-point collapses the range", func() {
			m.SetInPoint(5)
			m.SetOutPoint(10)
			m.SetInPoint(20)

			in, out := m.Range()
			So(in.MustGet(), ShouldEqual, 20)
			So(out.MustGet(), ShouldEqual, 20)
		})

		Convey("SetOutPoint with no in-point defaults the range to [0, t]", func() {
			m.SetOutPoint(8)
			in, out := m.Range()
			So(in.MustGet(), ShouldEqual, 0)
			So(out.MustGet(), ShouldEqual, 8)
		})

		Convey("SetOutPoint before the in-point is accepted as degenerate", func() {
			m.SetInPoint(9)
			m.SetOutPoint(4)

			in, out := m.Range()
			So(out.MustGet(), ShouldEqual, 4)
			So(in.MustGet(), ShouldBeLessThanOrEqualTo, out.MustGet())
		})

		Convey("Clear resets points, transcript selection and artifact", func() {
			cleared := false
			m.OnClear(func() { cleared = true })

			m.SetInPoint(3)
			m.SetOutPoint(8)
			m.SetTranscriptSelection(&TranscriptSelection{Text: "hello", StartTime: 1, EndTime: 2})

			m.Clear()

			in, out := m.Range()
			So(in.IsAbsent(), ShouldBeTrue)
			So(out.IsAbsent(), ShouldBeTrue)
			So(m.TranscriptSelection(), ShouldBeNil)
			So(cleared, ShouldBeTrue)
		})
	})
}
