package tui

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/unpuzzle-app/unpuzzle/transcript"
)

func TestSelectionSlice(t *testing.T) {
	Convey("selectionSlice", t, func() {
		segments := []transcript.Segment{
			{Text: "one", Start: 0, End: 2},
			{Text: "two", Start: 2, End: 4},
			{Text: "three", Start: 4, End: 6},
		}

		Convey("Should return the inclusive range with joined text", func() {
			segs, text := selectionSlice(segments, 0, 1)

			So(segs, ShouldHaveLength, 2)
			So(text, ShouldEqual, "one two")
		})

		Convey("Should normalize a reversed range", func() {
			segs, text := selectionSlice(segments, 2, 0)

			So(segs, ShouldHaveLength, 3)
			So(text, ShouldEqual, "one two three")
		})

		Convey("Should clamp out-of-bounds indices", func() {
			segs, text := selectionSlice(segments, -3, 99)

			So(segs, ShouldHaveLength, 3)
			So(text, ShouldEqual, "one two three")
		})

		Convey("Should handle an empty transcript", func() {
			segs, text := selectionSlice(nil, 0, 0)

			So(segs, ShouldBeEmpty)
			So(text, ShouldBeEmpty)
		})
	})
}
