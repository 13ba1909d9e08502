package history

import (
	"fmt"

	"github.com/unpuzzle-app/unpuzzle/course"
)

// SavedVideo represents a single lesson's watch progress preserved in the
// user's history.
type SavedVideo struct {
	CourseID          string  `json:"course_id"`
	CourseTitle       string  `json:"course_title"`
	CourseVideosTotal int     `json:"course_videos_total"`
	Title             string  `json:"title"`
	URL               string  `json:"url"`
	ID                string  `json:"id"`
	Index             int     `json:"index"`
	ResumePosition    float64 `json:"resume_position"`
	WatchedPercentage float64 `json:"watched_percentage"`
}

func (s *SavedVideo) encode() string {
	return fmt.Sprintf("%s/%s", s.CourseID, s.ID)
}

func (s *SavedVideo) String() string {
	return fmt.Sprintf("%s : %d / %d", s.CourseTitle, s.Index, s.CourseVideosTotal)
}

func newSavedVideo(video *course.Video) *SavedVideo {
	saved := &SavedVideo{
		Title: video.Title,
		URL:   video.URL,
		ID:    video.ID,
		Index: int(video.Index),
	}
	if video.Course != nil {
		saved.CourseID = video.Course.ID
		saved.CourseTitle = video.Course.Title
		saved.CourseVideosTotal = len(video.Course.Videos)
	}
	return saved
}
