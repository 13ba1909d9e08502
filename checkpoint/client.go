package checkpoint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/viper"
	"github.com/unpuzzle-app/unpuzzle/auth"
	"github.com/unpuzzle-app/unpuzzle/constant"
	"github.com/unpuzzle-app/unpuzzle/key"
	"github.com/unpuzzle-app/unpuzzle/log"
	"github.com/unpuzzle-app/unpuzzle/network"
)

// GetVideoCheckpoints retrieves all checkpoints anchored to a video, sorted
// by the platform in timestamp order. Returns nil (not an error) when the
// API is unreachable or the video has none, so playback proceeds without
// checkpoint gates.
func GetVideoCheckpoints(videoID string) ([]Checkpoint, error) {
	if !viper.GetBool(key.CheckpointsEnable) {
		return nil, nil
	}

	req, err := newRequest(http.MethodGet, endpoint("videos/%s/checkpoints", videoID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := network.Client.Do(req)
	if err != nil {
		log.Warnf("checkpoint: API request failed: %v", err)
		return nil, nil // Graceful degradation
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		log.Warnf("checkpoint: API returned status %d", resp.StatusCode)
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read checkpoints response: %w", err)
	}

	var checkpoints []Checkpoint
	if err := json.Unmarshal(body, &checkpoints); err != nil {
		return nil, fmt.Errorf("parse checkpoints response: %w", err)
	}

	return checkpoints, nil
}

// CreateCheckpoint registers a new checkpoint on its video.
func CreateCheckpoint(cp Checkpoint) (*Result, error) {
	return mutate(http.MethodPost, endpoint("videos/%s/checkpoints", cp.VideoID), cp)
}

// UpdateCheckpoint replaces an existing checkpoint's fields.
func UpdateCheckpoint(cp Checkpoint) (*Result, error) {
	return mutate(http.MethodPut, endpoint("checkpoints/%s", cp.ID), cp)
}

// DeleteCheckpoint removes a checkpoint.
func DeleteCheckpoint(id string) (*Result, error) {
	return mutate(http.MethodDelete, endpoint("checkpoints/%s", id), nil)
}

// SubmitQuizAnswer records the answer a learner selected at a quiz
// checkpoint.
func SubmitQuizAnswer(sub QuizSubmission) (*Result, error) {
	return mutate(http.MethodPost, endpoint("checkpoints/%s/quiz-answers", sub.CheckpointID), sub)
}

// SubmitReflection records a learner's reflection response.
func SubmitReflection(sub ReflectionSubmission) (*Result, error) {
	return mutate(http.MethodPost, endpoint("checkpoints/%s/reflections", sub.CheckpointID), sub)
}

// mutate performs a write request and decodes the platform's Result
// envelope. Unlike reads, write failures are real errors: the caller (or the
// offline queue) must know the mutation did not land.
func mutate(method, url string, payload interface{}) (*Result, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode checkpoint payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := newRequest(method, url, body)
	if err != nil {
		return nil, err
	}

	resp, err := network.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkpoint request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint response: %w", err)
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse checkpoint response: %w", err)
	}

	if !result.Success && result.Error != "" {
		log.Warnf("checkpoint: API rejected %s %s: %s", method, url, result.Error)
	}

	return &result, nil
}

// newRequest builds an API request carrying the stored bearer token, when
// one exists, and the client's user agent.
func newRequest(method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build checkpoint request: %w", err)
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, err := auth.GetToken(); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

func endpoint(format string, args ...interface{}) string {
	return viper.GetString(key.APIBaseURL) + "/" + fmt.Sprintf(format, args...)
}
