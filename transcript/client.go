package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/metafates/gache"
	"github.com/spf13/viper"
	"github.com/unpuzzle-app/unpuzzle/filesystem"
	"github.com/unpuzzle-app/unpuzzle/key"
	"github.com/unpuzzle-app/unpuzzle/log"
	"github.com/unpuzzle-app/unpuzzle/network"
	"github.com/unpuzzle-app/unpuzzle/where"
)

// cacher provides an abstracted, disk-backed registry for fetched transcripts.
var cacher = gache.New[map[string]*Transcript](
	&gache.Options{
		Path:       where.Transcripts(),
		Lifetime:   time.Hour * 24 * 7,
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get retrieves the transcript for a video, consulting the local cache before
// the platform API. Returns nil (not an error) when the video has no
// transcript, so callers can degrade gracefully.
func Get(videoID string) (*Transcript, error) {
	if !viper.GetBool(key.TranscriptFetch) {
		return nil, nil
	}

	cached, expired, err := cacher.Get()
	if err == nil && !expired && cached != nil {
		if t, ok := cached[videoID]; ok {
			return t, nil
		}
	}

	t, err := fetch(videoID)
	if err != nil || t == nil {
		return t, err
	}

	if cached == nil || expired {
		cached = make(map[string]*Transcript)
	}
	cached[videoID] = t
	if err := cacher.Set(cached); err != nil {
		log.Warnf("transcript: cache write failed: %v", err)
	}

	return t, nil
}

// fetch retrieves a transcript from the platform API.
func fetch(videoID string) (*Transcript, error) {
	url := fmt.Sprintf("%s/videos/%s/transcript", viper.GetString(key.APIBaseURL), videoID)

	resp, err := network.Client.Get(url)
	if err != nil {
		log.Warnf("transcript: API request failed: %v", err)
		return nil, nil // Graceful degradation
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Null result: the video has no transcript.
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		log.Warnf("transcript: API returned status %d", resp.StatusCode)
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read transcript response: %w", err)
	}

	var t Transcript
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, fmt.Errorf("parse transcript response: %w", err)
	}
	t.VideoID = videoID

	return &t, nil
}
