// Package inline provides the implementation for the application's non-interactive, programmable execution mode.
package inline

import (
	"fmt"
	"io"
	"os"

	"github.com/unpuzzle-app/unpuzzle/checkpoint"
	"github.com/unpuzzle-app/unpuzzle/course"
	"github.com/unpuzzle-app/unpuzzle/history"
	"github.com/unpuzzle-app/unpuzzle/log"
	"github.com/unpuzzle-app/unpuzzle/transcript"
)

func Run(options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	found, err := course.Search(options.Query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var selected []*course.Course
	if picker, ok := options.Picker.Get(); ok {
		if choice := picker(found); choice != nil {
			selected = []*course.Course{choice}
		}
	} else {
		selected = found
	}

	if len(selected) == 0 {
		if options.Json {
			return writeJson(options.Out, nil, options)
		}
		return nil
	}

	results := make([]*Course, 0, len(selected))
	for _, c := range selected {
		prepared, err := prepareCourse(c, options)
		if err != nil {
			return err
		}
		results = append(results, prepared)
	}

	if options.Json {
		return writeJson(options.Out, results, options)
	}

	for _, r := range results {
		for _, v := range r.Videos {
			fmt.Fprintln(options.Out, v.Video.URL)
		}
	}

	return nil
}

// prepareCourse loads the full lesson list, applies the video filter and
// attaches the requested enrichments.
func prepareCourse(c *course.Course, options *Options) (*Course, error) {
	full, err := course.GetByID(c.ID)
	if err != nil {
		return nil, fmt.Errorf("loading course %s: %w", c.ID, err)
	}

	videos := full.Videos
	if filter, ok := options.Filter.Get(); ok {
		videos, err = filter(videos)
		if err != nil {
			return nil, err
		}
	}

	var saved map[string]*history.SavedVideo
	if options.IncludeProgress {
		if saved, err = history.Get(); err != nil {
			log.Warnf("could not read history: %v", err)
		}
	}

	prepared := make([]*Video, 0, len(videos))
	for _, v := range videos {
		entry := &Video{Video: v}

		if options.IncludeTranscripts {
			t, err := transcript.Get(v.ID)
			if err != nil {
				log.Warnf("transcript unavailable for %s: %v", v.ID, err)
			}
			entry.Transcript = t
		}

		if options.IncludeCheckpoints {
			cps, err := checkpoint.GetVideoCheckpoints(v.ID)
			if err != nil {
				log.Warnf("checkpoints unavailable for %s: %v", v.ID, err)
			}
			entry.Checkpoints = cps
		}

		if options.IncludeProgress && saved != nil {
			for _, s := range saved {
				if s.ID == v.ID {
					entry.Progress = &Progress{
						ResumePosition:    s.ResumePosition,
						WatchedPercentage: s.WatchedPercentage,
					}
					break
				}
			}
		}

		prepared = append(prepared, entry)
	}

	return &Course{Course: full, Videos: prepared}, nil
}

func writeJson(out io.Writer, courses []*Course, options *Options) error {
	data, err := asJson(courses, options.Query)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
