package history

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/unpuzzle-app/unpuzzle/course"
	"github.com/unpuzzle-app/unpuzzle/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

func testVideo() *course.Video {
	c := &course.Course{
		ID:    "crs-1",
		Title: "Concurrency Patterns",
	}
	video := &course.Video{
		ID:     "vid-1",
		Title:  "Channels and Select",
		URL:    "https://cdn.example.com/vid-1.mp4",
		Index:  3,
		Course: c,
	}
	c.Videos = []*course.Video{video}
	return video
}

func TestHistory(t *testing.T) {
	Convey("Given a course video", t, func() {
		filesystem.SetMemMapFs()
		video := testVideo()

		Convey("When saving its progress", func() {
			err := Save(video, 120, 40)

			Convey("Then the record should be persisted", func() {
				So(err, ShouldBeNil)

				saved, err := Get()
				So(err, ShouldBeNil)
				So(saved, ShouldHaveLength, 1)

				record := saved["crs-1/vid-1"]
				So(record, ShouldNotBeNil)
				So(record.Title, ShouldEqual, "Channels and Select")
				So(record.ResumePosition, ShouldEqual, 120)
				So(record.WatchedPercentage, ShouldEqual, 40)
			})
		})

		Convey("When re-watching an earlier section", func() {
			So(Save(video, 300, 80), ShouldBeNil)
			So(Save(video, 60, 20), ShouldBeNil)

			Convey("Then the percentage never regresses but the position follows", func() {
				saved, err := Get()
				So(err, ShouldBeNil)

				record := saved["crs-1/vid-1"]
				So(record.WatchedPercentage, ShouldEqual, 80)
				So(record.ResumePosition, ShouldEqual, 60)
			})
		})

		Convey("When removing the record", func() {
			So(Save(video, 10, 5), ShouldBeNil)

			saved, _ := Get()
			So(Remove(saved["crs-1/vid-1"]), ShouldBeNil)

			saved, err := Get()
			So(err, ShouldBeNil)
			So(saved, ShouldBeEmpty)
		})
	})
}
