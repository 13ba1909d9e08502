// Package agent defines the action protocol between the playback client and
// the platform's learning agent, and the session controller that emits
// actions from playback and selection activity.
package agent

// Type tags an action with its protocol discriminator.
type Type string

const (
	VideoPlayed         Type = "VIDEO_PLAYED"
	VideoManuallyPaused Type = "VIDEO_MANUALLY_PAUSED"
	SetInPoint          Type = "SET_IN_POINT"
	SetOutPoint         Type = "SET_OUT_POINT"
	SendSegmentToChat   Type = "SEND_SEGMENT_TO_CHAT"
	ClearSegment        Type = "CLEAR_SEGMENT"
	UpdateSegment       Type = "UPDATE_SEGMENT"
	AgentButtonClicked  Type = "AGENT_BUTTON_CLICKED"
	QuizAnswerSelected  Type = "QUIZ_ANSWER_SELECTED"
	ReflectionSubmitted Type = "REFLECTION_SUBMITTED"
)

// PlaybackSnapshot captures the position and playing flag as a single
// consistent read, so an action never reports a position from one state and
// a playing flag from another.
type PlaybackSnapshot struct {
	CurrentTime float64 `json:"currentTime"`
	IsPlaying   bool    `json:"isPlaying"`
}

// RangeSnapshot captures both selection endpoints atomically.
type RangeSnapshot struct {
	InPoint  float64 `json:"inPoint"`
	OutPoint float64 `json:"outPoint"`
}

// SegmentSnapshot carries a resolved transcript selection.
type SegmentSnapshot struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// CheckpointResponse carries a learner's checkpoint interaction.
type CheckpointResponse struct {
	CheckpointID string `json:"checkpointId"`
	Answer       string `json:"answer,omitempty"`
	Correct      bool   `json:"correct,omitempty"`
	Text         string `json:"text,omitempty"`
}

// Action is the tagged union dispatched to the agent. Only the payload
// fields relevant to the Type are populated.
type Action struct {
	Type    Type   `json:"type"`
	VideoID string `json:"videoId"`
	At      int64  `json:"at"`

	Playback   *PlaybackSnapshot   `json:"playback,omitempty"`
	Range      *RangeSnapshot      `json:"range,omitempty"`
	Segment    *SegmentSnapshot    `json:"segment,omitempty"`
	Checkpoint *CheckpointResponse `json:"checkpoint,omitempty"`
	Button     string              `json:"button,omitempty"`
}
