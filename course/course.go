// Package course defines the catalog data model and the platform client for
// course discovery.
package course

import "fmt"

// Course is a published course in the platform catalog.
type Course struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Instructor  string `json:"instructor"`
	URL         string `json:"url"`

	// Videos are populated by GetByID; search results carry only the count.
	Videos     []*Video `json:"videos,omitempty"`
	VideoCount int      `json:"video_count"`
}

func (c *Course) String() string {
	return c.Title
}

// Video is a single lesson within a course.
type Video struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Duration float64 `json:"duration"`
	Index    uint16  `json:"index"`

	Course *Course `json:"-"`
}

func (v *Video) String() string {
	if v.Course != nil {
		return fmt.Sprintf("%s : %s", v.Course.Title, v.Title)
	}
	return v.Title
}
