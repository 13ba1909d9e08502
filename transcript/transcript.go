// Package transcript provides the video transcript data model and a cached
// client for retrieving transcripts from the platform API.
package transcript

import (
	"strings"
)

// Segment is a single timed span of transcript text covering [Start, End)
// seconds of the video.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the temporal length of the segment in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Transcript is the ordered collection of segments for one video.
type Transcript struct {
	VideoID  string    `json:"video_id"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// FullText returns all segment texts joined by single spaces, the same
// concatenation selection resolution matches against.
func (t *Transcript) FullText() string {
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}

// SegmentAt returns the segment covering the given playback time, if any.
func (t *Transcript) SegmentAt(at float64) (Segment, bool) {
	if i := t.IndexAt(at); i >= 0 {
		return t.Segments[i], true
	}
	return Segment{}, false
}

// IndexAt returns the index of the segment covering the given playback time,
// or -1 when the time falls outside every segment.
func (t *Transcript) IndexAt(at float64) int {
	for i, seg := range t.Segments {
		if at >= seg.Start && at < seg.End {
			return i
		}
	}
	return -1
}
