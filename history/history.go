// Package history provides the implementation for tracking and persisting
// per-video watch progress.
package history

import (
	"github.com/metafates/gache"
	"github.com/unpuzzle-app/unpuzzle/course"
	"github.com/unpuzzle-app/unpuzzle/filesystem"
	"github.com/unpuzzle-app/unpuzzle/where"
)

// cacher provides an abstracted, disk-backed registry for watch progress
// records.
var cacher = gache.New[map[string]*SavedVideo](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of watch progress records from the
// persistent store.
func Get() (map[string]*SavedVideo, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*SavedVideo), nil
	}
	return cached, nil
}

// Save persists the watch progress of a specific video. The watched
// percentage never regresses: re-watching an earlier section keeps the
// maximum observed value, while the resume position always follows the
// latest session.
func Save(video *course.Video, position, percentage float64) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	record := newSavedVideo(video)
	record.ResumePosition = position

	if existing, exists := saved[record.encode()]; exists {
		if percentage < existing.WatchedPercentage {
			percentage = existing.WatchedPercentage
		}
	}
	record.WatchedPercentage = percentage

	saved[record.encode()] = record

	return cacher.Set(saved)
}

// Remove permanently deletes a specific watch record.
func Remove(video *SavedVideo) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, video.encode())
	return cacher.Set(saved)
}
