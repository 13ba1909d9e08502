package grader

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGrader(t *testing.T) {
	Convey("Grader", t, func() {
		Convey("Should run a simple equality grader", func() {
			g, err := New(`function grade(answer, correct) return answer == correct end`)
			So(err, ShouldBeNil)
			defer g.Close()

			ok, err := g.Grade("42", "42")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			ok, err = g.Grade("41", "42")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("Should support string library helpers", func() {
			g, err := New(`function grade(answer, correct) return string.lower(answer) == string.lower(correct) end`)
			So(err, ShouldBeNil)
			defer g.Close()

			ok, err := g.Grade("Store", "STORE")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
		})

		Convey("Should reject scripts without a grade function", func() {
			_, err := New(`local x = 1`)
			So(err, ShouldNotBeNil)
		})

		Convey("Should reject scripts that fail to compile", func() {
			_, err := New(`function grade(`)
			So(err, ShouldNotBeNil)
		})

		Convey("Should reject non-boolean results", func() {
			g, err := New(`function grade(answer, correct) return "yes" end`)
			So(err, ShouldBeNil)
			defer g.Close()

			_, err = g.Grade("a", "b")
			So(err, ShouldNotBeNil)
		})

		Convey("Should abort runaway scripts", func() {
			g, err := New(`function grade(answer, correct) while true do end end`)
			So(err, ShouldBeNil)
			defer g.Close()
			g.timeout = 50 * time.Millisecond

			_, err = g.Grade("a", "b")
			So(err, ShouldNotBeNil)
		})

		Convey("Should not expose os or io", func() {
			g, err := New(`function grade(answer, correct) return os ~= nil or io ~= nil end`)
			So(err, ShouldBeNil)
			defer g.Close()

			ok, err := g.Grade("a", "b")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestExactMatch(t *testing.T) {
	Convey("ExactMatch", t, func() {
		Convey("Should ignore case and surrounding whitespace", func() {
			So(ExactMatch("  Coordinator ", "coordinator"), ShouldBeTrue)
		})

		Convey("Should reject different answers", func() {
			So(ExactMatch("store", "tracker"), ShouldBeFalse)
		})
	})
}
