// Package inline provides the implementation for the application's non-interactive, programmable execution mode.
package inline

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/unpuzzle-app/unpuzzle/course"
	"github.com/unpuzzle-app/unpuzzle/util"
)

type (
	CoursePicker func([]*course.Course) *course.Course
	VideosFilter func([]*course.Video) ([]*course.Video, error)
)

type Options struct {
	Out    io.Writer
	Query  string
	Json   bool
	Picker mo.Option[CoursePicker]
	Filter mo.Option[VideosFilter]

	// Enrichment toggles for the JSON output.
	IncludeTranscripts bool
	IncludeCheckpoints bool
	IncludeProgress    bool
}

func ParseCoursePicker(kind, value string) (CoursePicker, error) {
	switch kind {
	case "first":
		return func(courses []*course.Course) *course.Course {
			if len(courses) == 0 {
				return nil
			}
			return courses[0]
		}, nil
	case "last":
		return func(courses []*course.Course) *course.Course {
			if len(courses) == 0 {
				return nil
			}
			return courses[len(courses)-1]
		}, nil
	case "exact":
		return func(courses []*course.Course) *course.Course {
			for _, c := range courses {
				if c.Title == value {
					return c
				}
			}
			return nil
		}, nil
	case "index":
		idx, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid index: %s", value)
		}
		return func(courses []*course.Course) *course.Course {
			if len(courses) == 0 {
				return nil
			}
			i := util.Min(idx, uint64(len(courses)-1))
			return courses[i]
		}, nil
	default:
		return nil, fmt.Errorf("unknown picker type: %s", kind)
	}
}

// ParseVideosFilter parses a string description of a lesson filter.
// Format: "first", "last", "all", "1-5", "@substring@" or a single index.
func ParseVideosFilter(description string) (VideosFilter, error) {
	if description == "first" {
		return func(videos []*course.Video) ([]*course.Video, error) {
			if len(videos) == 0 {
				return videos, nil
			}
			return videos[:1], nil
		}, nil
	}
	if description == "last" {
		return func(videos []*course.Video) ([]*course.Video, error) {
			if len(videos) == 0 {
				return videos, nil
			}
			return videos[len(videos)-1:], nil
		}, nil
	}
	if description == "all" {
		return func(videos []*course.Video) ([]*course.Video, error) {
			return videos, nil
		}, nil
	}

	// Range: "1-5"
	if strings.Contains(description, "-") {
		parts := strings.Split(description, "-")
		if len(parts) == 2 {
			from, err1 := strconv.ParseUint(parts[0], 10, 16)
			to, err2 := strconv.ParseUint(parts[1], 10, 16)
			if err1 == nil && err2 == nil {
				return func(videos []*course.Video) ([]*course.Video, error) {
					start := util.Min(from, uint64(len(videos)))
					end := util.Min(to+1, uint64(len(videos)))
					if start > end {
						return []*course.Video{}, nil
					}
					return videos[start:end], nil
				}, nil
			}
		}
	}

	// Substring: "@text@"
	if strings.HasPrefix(description, "@") && strings.HasSuffix(description, "@") {
		sub := description[1 : len(description)-1]
		return func(videos []*course.Video) ([]*course.Video, error) {
			return lo.Filter(videos, func(v *course.Video, _ int) bool {
				return strings.Contains(strings.ToLower(v.Title), strings.ToLower(sub))
			}), nil
		}, nil
	}

	// Single index: "5"
	if idx, err := strconv.ParseUint(description, 10, 16); err == nil {
		return func(videos []*course.Video) ([]*course.Video, error) {
			if uint64(len(videos)) <= idx {
				return []*course.Video{}, nil
			}
			return []*course.Video{videos[idx]}, nil
		}, nil
	}

	return nil, fmt.Errorf("invalid video filter: %s", description)
}
