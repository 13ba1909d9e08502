package inline

import (
	"bytes"
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/unpuzzle-app/unpuzzle/course"
)

func TestWriteJson(t *testing.T) {
	Convey("writeJson", t, func() {
		Convey("Should produce valid JSON for an empty result", func() {
			var buf bytes.Buffer
			opts := &Options{Query: "test", Json: true}
			err := writeJson(&buf, nil, opts)
			So(err, ShouldBeNil)

			var output Output
			err = json.Unmarshal(buf.Bytes(), &output)
			So(err, ShouldBeNil)
			So(output.Query, ShouldEqual, "test")
			So(output.Result, ShouldHaveLength, 0)
		})

		Convey("Should carry prepared courses through", func() {
			var buf bytes.Buffer
			opts := &Options{Query: "go", Json: true}
			result := []*Course{
				{
					Course: &course.Course{ID: "crs-1", Title: "Go Basics"},
					Videos: []*Video{
						{Video: &course.Video{ID: "vid-1", Title: "Hello"}},
					},
				},
			}

			err := writeJson(&buf, result, opts)
			So(err, ShouldBeNil)

			var output Output
			So(json.Unmarshal(buf.Bytes(), &output), ShouldBeNil)
			So(output.Result, ShouldHaveLength, 1)
			So(output.Result[0].Course.Title, ShouldEqual, "Go Basics")
			So(output.Result[0].Videos, ShouldHaveLength, 1)
		})
	})
}

func TestParseCoursePicker(t *testing.T) {
	Convey("ParseCoursePicker", t, func() {
		courses := []*course.Course{
			{ID: "a", Title: "Alpha"},
			{ID: "b", Title: "Beta"},
			{ID: "c", Title: "Gamma"},
		}

		Convey("first", func() {
			pick, err := ParseCoursePicker("first", "")
			So(err, ShouldBeNil)
			So(pick(courses).ID, ShouldEqual, "a")
		})

		Convey("last", func() {
			pick, err := ParseCoursePicker("last", "")
			So(err, ShouldBeNil)
			So(pick(courses).ID, ShouldEqual, "c")
		})

		Convey("exact", func() {
			pick, err := ParseCoursePicker("exact", "Beta")
			So(err, ShouldBeNil)
			So(pick(courses).ID, ShouldEqual, "b")

			So(pick([]*course.Course{{Title: "Other"}}), ShouldBeNil)
		})

		Convey("index clamps to the available range", func() {
			pick, err := ParseCoursePicker("index", "99")
			So(err, ShouldBeNil)
			So(pick(courses).ID, ShouldEqual, "c")
		})

		Convey("unknown kind fails", func() {
			_, err := ParseCoursePicker("fuzzy", "")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParseVideosFilter(t *testing.T) {
	Convey("ParseVideosFilter", t, func() {
		videos := []*course.Video{
			{ID: "1", Title: "Introduction"},
			{ID: "2", Title: "Setup"},
			{ID: "3", Title: "Deep Dive"},
			{ID: "4", Title: "Wrap Up"},
		}

		apply := func(description string) []*course.Video {
			filter, err := ParseVideosFilter(description)
			So(err, ShouldBeNil)
			filtered, err := filter(videos)
			So(err, ShouldBeNil)
			return filtered
		}

		Convey("first", func() {
			So(apply("first"), ShouldHaveLength, 1)
			So(apply("first")[0].ID, ShouldEqual, "1")
		})

		Convey("last", func() {
			So(apply("last")[0].ID, ShouldEqual, "4")
		})

		Convey("all", func() {
			So(apply("all"), ShouldHaveLength, 4)
		})

		Convey("range", func() {
			filtered := apply("1-2")
			So(filtered, ShouldHaveLength, 2)
			So(filtered[0].ID, ShouldEqual, "2")
		})

		Convey("substring", func() {
			filtered := apply("@deep@")
			So(filtered, ShouldHaveLength, 1)
			So(filtered[0].ID, ShouldEqual, "3")
		})

		Convey("single index", func() {
			filtered := apply("2")
			So(filtered, ShouldHaveLength, 1)
			So(filtered[0].ID, ShouldEqual, "3")
		})

		Convey("out of range index yields nothing", func() {
			So(apply("42"), ShouldHaveLength, 0)
		})

		Convey("garbage fails", func() {
			_, err := ParseVideosFilter("not a filter")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSchema(t *testing.T) {
	Convey("Schema", t, func() {
		data, err := Schema()
		So(err, ShouldBeNil)

		var schema map[string]any
		So(json.Unmarshal(data, &schema), ShouldBeNil)
		So(schema["$ref"], ShouldNotBeEmpty)
	})
}
