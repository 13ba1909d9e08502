package selection

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/unpuzzle-app/unpuzzle/transcript"
)

func testSegments() []transcript.Segment {
	return []transcript.Segment{
		{Text: "welcome to the course", Start: 0, End: 4},
		{Text: "today we cover state machines", Start: 4, End: 10},
		{Text: "and how coordinators reconcile drift", Start: 10, End: 16},
	}
}

func TestResolveRange(t *testing.T) {
	Convey("Given a transcript of three segments", t, func() {
		segments := testSegments()

		Convey("An exact substring within one segment interpolates its window", func() {
			sel := ResolveRange("state machines", segments, nil)
			So(sel, ShouldNotBeNil)
			So(sel.StartTime, ShouldBeGreaterThan, 4)
			So(sel.StartTime, ShouldBeLessThan, 10)
			So(sel.EndTime, ShouldEqual, 10)
		})

		Convey("An exact substring spanning two segments crosses their boundary", func() {
			sel := ResolveRange("cover state machines and how", segments, nil)
			So(sel, ShouldNotBeNil)
			So(sel.StartTime, ShouldBeGreaterThanOrEqualTo, 4)
			So(sel.StartTime, ShouldBeLessThan, 10)
			So(sel.EndTime, ShouldBeGreaterThan, 10)
			So(sel.EndTime, ShouldBeLessThanOrEqualTo, 16)
		})

		Convey("Messy whitespace in the selection still matches exactly", func() {
			sel := ResolveRange("  state \n machines ", segments, nil)
			So(sel, ShouldNotBeNil)
		})

		Convey("A selection with light edits falls back to word anchors", func() {
			// "coordinators recncile" is not an exact substring, but its
			// words anchor into the third segment.
			sel := ResolveRange("coordinators recncile", segments, nil)
			So(sel, ShouldNotBeNil)
			So(sel.StartTime, ShouldEqual, 10)
			So(sel.EndTime, ShouldEqual, 16)
		})

		Convey("Unmatchable text falls back to the injected lookup", func() {
			lookup := func(string) []transcript.Segment {
				return segments[0:2]
			}
			sel := ResolveRange("zzzz qqqq", segments, lookup)
			So(sel, ShouldNotBeNil)
			So(sel.StartTime, ShouldEqual, 0)
			So(sel.EndTime, ShouldEqual, 10)
		})

		Convey("All tiers failing yields nil, not an error", func() {
			lookup := func(string) []transcript.Segment { return nil }
			So(ResolveRange("zzzz qqqq", segments, lookup), ShouldBeNil)
			So(ResolveRange("zzzz qqqq", segments, nil), ShouldBeNil)
		})

		Convey("Empty input yields nil", func() {
			So(ResolveRange("   ", segments, nil), ShouldBeNil)
			So(ResolveRange("anything", nil, nil), ShouldBeNil)
		})
	})
}
