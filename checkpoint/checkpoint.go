// Package checkpoint provides a client for the platform's instructor
// checkpoint API: timestamped interactions (quizzes, reflections, voice
// memos) attached to videos.
package checkpoint

import "encoding/json"

// Kind discriminates the checkpoint interaction types the platform supports.
type Kind string

const (
	Quiz       Kind = "quiz"
	Reflection Kind = "reflection"
	VoiceMemo  Kind = "voice-memo"
)

// Checkpoint is an instructor-authored interaction anchored to a video
// timestamp. Only the fields matching its Kind are populated.
type Checkpoint struct {
	ID      string  `json:"id"`
	VideoID string  `json:"video_id"`
	Time    float64 `json:"time"`
	Kind    Kind    `json:"kind"`

	// Quiz fields.
	Question      string   `json:"question,omitempty"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	// Grader is an optional instructor-authored Lua snippet overriding the
	// default exact-match answer check.
	Grader string `json:"grader,omitempty"`

	// Reflection / voice-memo fields.
	Prompt        string `json:"prompt,omitempty"`
	AttachmentURL string `json:"attachment_url,omitempty"`
}

// Result is the platform's opaque mutation envelope. Data is passed through
// unparsed so callers decide what, if anything, to decode.
type Result struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// QuizSubmission records an answer selected at a quiz checkpoint.
type QuizSubmission struct {
	CheckpointID string `json:"checkpoint_id"`
	Answer       string `json:"answer"`
	Correct      bool   `json:"correct"`
}

// ReflectionSubmission records a free-form response at a reflection
// checkpoint.
type ReflectionSubmission struct {
	CheckpointID string `json:"checkpoint_id"`
	Text         string `json:"text"`
}
