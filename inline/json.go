// Package inline provides the implementation for the application's non-interactive, programmable execution mode.
package inline

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/unpuzzle-app/unpuzzle/checkpoint"
	"github.com/unpuzzle-app/unpuzzle/course"
	"github.com/unpuzzle-app/unpuzzle/transcript"
)

// Video is a lesson with its optional enrichments.
type Video struct {
	Video       *course.Video           `json:"video"`
	Transcript  *transcript.Transcript  `json:"transcript,omitempty"`
	Checkpoints []checkpoint.Checkpoint `json:"checkpoints,omitempty"`
	Progress    *Progress               `json:"progress,omitempty"`
}

// Progress is the locally saved watch state of a lesson.
type Progress struct {
	ResumePosition    float64 `json:"resume_position"`
	WatchedPercentage float64 `json:"watched_percentage"`
}

// Course pairs catalog metadata with its prepared lessons.
type Course struct {
	Course *course.Course `json:"course"`
	Videos []*Video       `json:"videos"`
}

type Output struct {
	Query  string    `json:"query"`
	Result []*Course `json:"result"`
}

func asJson(courses []*Course, query string) ([]byte, error) {
	if courses == nil {
		courses = []*Course{}
	}
	return json.Marshal(&Output{
		Query:  query,
		Result: courses,
	})
}

// Schema returns the JSON schema of the inline output document.
func Schema() ([]byte, error) {
	schema := jsonschema.Reflect(&Output{})
	return json.MarshalIndent(schema, "", "  ")
}
