package course

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/viper"
	"github.com/unpuzzle-app/unpuzzle/auth"
	"github.com/unpuzzle-app/unpuzzle/constant"
	"github.com/unpuzzle-app/unpuzzle/key"
	"github.com/unpuzzle-app/unpuzzle/log"
	"github.com/unpuzzle-app/unpuzzle/network"
)

// Search queries the platform catalog for courses matching the given title
// fragment.
func Search(query string) ([]*Course, error) {
	log.Infof("Searching catalog for: %s", query)

	endpoint := fmt.Sprintf("%s/courses?q=%s", viper.GetString(key.APIBaseURL), url.QueryEscape(query))
	body, err := get(endpoint)
	if err != nil {
		return nil, err
	}

	var courses []*Course
	if err := json.Unmarshal(body, &courses); err != nil {
		return nil, fmt.Errorf("parse catalog response: %w", err)
	}

	for _, c := range courses {
		_ = idCacher.Set(c.ID, c)
	}

	return courses, nil
}

// GetByID retrieves a course with its full video list, consulting the local
// cache first.
func GetByID(id string) (*Course, error) {
	if cached := idCacher.Get(id); cached.IsPresent() {
		if c := cached.MustGet(); len(c.Videos) > 0 {
			bindVideos(c)
			return c, nil
		}
	}

	endpoint := fmt.Sprintf("%s/courses/%s", viper.GetString(key.APIBaseURL), id)
	body, err := get(endpoint)
	if err != nil {
		return nil, err
	}

	var course Course
	if err := json.Unmarshal(body, &course); err != nil {
		return nil, fmt.Errorf("parse course response: %w", err)
	}

	bindVideos(&course)
	_ = idCacher.Set(course.ID, &course)

	return &course, nil
}

// bindVideos sets the parent backreference on each lesson.
func bindVideos(c *Course) {
	for _, v := range c.Videos {
		v.Course = c
	}
}

func get(endpoint string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constant.UserAgent)
	if token, err := auth.GetToken(); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := network.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
