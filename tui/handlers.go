// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/unpuzzle-app/unpuzzle/checkpoint"
	"github.com/unpuzzle-app/unpuzzle/course"
	"github.com/unpuzzle-app/unpuzzle/grader"
	"github.com/unpuzzle-app/unpuzzle/history"
	"github.com/unpuzzle-app/unpuzzle/internal/session"
	"github.com/unpuzzle-app/unpuzzle/key"
	"github.com/unpuzzle-app/unpuzzle/log"
	"github.com/unpuzzle-app/unpuzzle/util"
)

func (b *statefulBubble) loadHistory() (tea.Cmd, error) {
	saved, err := history.Get()
	if err != nil {
		return nil, err
	}

	entries := lo.Values(saved)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CourseTitle == entries[j].CourseTitle {
			return entries[i].Index < entries[j].Index
		}
		return strings.Compare(entries[i].CourseTitle, entries[j].CourseTitle) < 0
	})

	var items []list.Item
	for _, e := range entries {
		items = append(items, &listItem{
			internal: e,
		})
	}

	return b.historyC.SetItems(items), nil
}

func (b *statefulBubble) searchCourses(query string) tea.Cmd {
	return func() tea.Msg {
		log.Info("searching catalog for " + query)
		b.progressStatus = "Searching the catalog"

		courses, err := course.Search(query)
		if err != nil {
			log.Error(err)
			b.errorChannel <- err
			return nil
		}

		log.Infof("found %s", util.Quantify(len(courses), "course", "courses"))
		b.foundCoursesChannel <- courses
		return nil
	}
}

func (b *statefulBubble) waitForCourses() tea.Cmd {
	return func() tea.Msg {
		select {
		case found := <-b.foundCoursesChannel:
			return found
		case err := <-b.errorChannel:
			b.lastError = err
			return err
		}
	}
}

func (b *statefulBubble) loadVideos(c *course.Course) tea.Cmd {
	return func() tea.Msg {
		log.Info("loading videos of " + c.Title)
		b.progressStatus = "Loading course"

		full, err := course.GetByID(c.ID)
		if err != nil {
			log.Error(err)
			b.errorChannel <- err
			return nil
		}

		log.Infof("found %s", util.Quantify(len(full.Videos), "video", "videos"))
		b.loadedVideosChannel <- full
		return nil
	}
}

func (b *statefulBubble) waitForVideos() tea.Cmd {
	return func() tea.Msg {
		select {
		case loaded := <-b.loadedVideosChannel:
			return loaded
		case err := <-b.errorChannel:
			b.lastError = err
			return err
		}
	}
}

func (b *statefulBubble) watchVideo(video *course.Video) tea.Cmd {
	return func() tea.Msg {
		b.selectedVideo = video
		b.progressStatus = "Launching player"

		s, err := session.Start(video)
		if err != nil {
			log.Error(err)
			b.errorChannel <- err
			return nil
		}

		log.Infof("watching %s on socket %s", video.Title, s.Player.Socket())
		b.sessionChannel <- s
		return nil
	}
}

// continueWatching resumes a saved history entry. It reloads the course so
// the post-watch navigation has lesson neighbors, then seeks to the saved
// position.
func (b *statefulBubble) continueWatching(entry *history.SavedVideo) tea.Cmd {
	return func() tea.Msg {
		b.progressStatus = "Resuming " + entry.Title

		video := &course.Video{
			ID:    entry.ID,
			Title: entry.Title,
			URL:   entry.URL,
			Index: uint16(entry.Index),
		}

		if full, err := course.GetByID(entry.CourseID); err == nil {
			b.selectedCourse = full
			for _, v := range full.Videos {
				if v.ID == entry.ID {
					video = v
					break
				}
			}
		} else {
			log.Warnf("could not reload course %s: %v", entry.CourseID, err)
		}

		b.selectedVideo = video
		s, err := session.Start(video)
		if err != nil {
			log.Error(err)
			b.errorChannel <- err
			return nil
		}

		if entry.ResumePosition > 0 {
			if err := s.Clock.Seek(entry.ResumePosition); err != nil {
				log.Warnf("resume seek failed: %v", err)
			}
		}

		b.sessionChannel <- s
		return nil
	}
}

func (b *statefulBubble) waitForSession() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-b.sessionChannel:
			return s
		case err := <-b.errorChannel:
			b.lastError = err
			return err
		}
	}
}

// playbackTickMsg drives the periodic refresh of the watch view.
type playbackTickMsg time.Time

func (b *statefulBubble) tickPlayback() tea.Cmd {
	return tea.Tick(time.Second/2, func(t time.Time) tea.Msg {
		return playbackTickMsg(t)
	})
}

// checkpointGateMsg is delivered when playback reaches a checkpoint.
type checkpointGateMsg checkpoint.Checkpoint

func (b *statefulBubble) waitForGate() tea.Cmd {
	return func() tea.Msg {
		cp, ok := <-b.session.Gates()
		if !ok {
			return nil
		}
		return checkpointGateMsg(cp)
	}
}

// playerExitMsg is delivered when the media player process terminates.
type playerExitMsg struct{}

func (b *statefulBubble) waitForPlayerExit() tea.Cmd {
	return func() tea.Msg {
		<-b.session.Player.Wait()
		return playerExitMsg{}
	}
}

// submitQuizAnswer grades the selected answer and reports it to both the
// checkpoint API and the agent. Grading prefers the checkpoint's Lua grader
// when enabled, falling back to an exact match.
func (b *statefulBubble) submitQuizAnswer(cp checkpoint.Checkpoint, answer string) tea.Cmd {
	return func() tea.Msg {
		correct := grader.ExactMatch(answer, cp.CorrectAnswer)
		if grader.Enabled() && cp.Grader != "" {
			if g, err := grader.New(cp.Grader); err == nil {
				if ok, err := g.Grade(answer, cp.CorrectAnswer); err == nil {
					correct = ok
				} else {
					log.Warnf("grader failed, using exact match: %v", err)
				}
				g.Close()
			} else {
				log.Warnf("grader rejected, using exact match: %v", err)
			}
		}

		b.session.Agent.QuizAnswered(cp.ID, answer, correct)
		if _, err := checkpoint.SubmitQuizAnswer(checkpoint.QuizSubmission{
			CheckpointID: cp.ID,
			Answer:       answer,
			Correct:      correct,
		}); err != nil {
			log.Warnf("quiz submission failed: %v", err)
			return quizGradedMsg{correct: correct, delivered: false}
		}

		return quizGradedMsg{correct: correct, delivered: true}
	}
}

type quizGradedMsg struct {
	correct   bool
	delivered bool
}

// submitReflection delivers a reflection response.
func (b *statefulBubble) submitReflection(cp checkpoint.Checkpoint, text string) tea.Cmd {
	return func() tea.Msg {
		b.session.Agent.ReflectionGiven(cp.ID, text)
		if _, err := checkpoint.SubmitReflection(checkpoint.ReflectionSubmission{
			CheckpointID: cp.ID,
			Text:         text,
		}); err != nil {
			log.Warnf("reflection submission failed: %v", err)
		}
		return reflectionSentMsg{}
	}
}

type reflectionSentMsg struct{}

// seekStep returns the configured arrow-key seek increment in seconds.
func seekStep() float64 {
	step := viper.GetFloat64(key.PlayerSeekStep)
	if step <= 0 {
		step = 5
	}
	return step
}
