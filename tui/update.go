// Package tui provides the primary terminal user interface implementation.
package tui

import (
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/unpuzzle-app/unpuzzle/checkpoint"
	"github.com/unpuzzle-app/unpuzzle/course"
	"github.com/unpuzzle-app/unpuzzle/history"
	"github.com/unpuzzle-app/unpuzzle/internal/session"
	"github.com/unpuzzle-app/unpuzzle/log"
	"github.com/unpuzzle-app/unpuzzle/open"
	"github.com/unpuzzle-app/unpuzzle/query"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Process Ephemeral UI Notifications (captures `string` and `ui.ClearNotificationMsg`)
	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = tea.Batch(cmd, uiCmd)
	}

	switch msg := msg.(type) {
	case error:
		b.raiseError(msg)
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.forceQuit):
			b.closeSession()
			return b, tea.Quit
		}

		// Input Guard: Ignore non-priority keys during asynchronous operations.
		if b.busy && b.state != watchState && b.state != errorState {
			return b, nil
		}

		switch {
		case bubblesKey.Matches(msg, b.keymap.back):
			// Reflection input swallows every key except esc and enter.
			if b.state == reflectionState {
				break
			}

			onListBack := func(l *list.Model) tea.Cmd {
				l.ResetSelected()
				l.ResetFilter()
				return tea.Batch(cmd, l.NewStatusMessage(""))
			}

			switch b.state {
			case searchState:
				b.inputC.SetValue("")
			case watchState:
				// Esc first backs out of transcript selection, then the session.
				if b.selecting {
					b.cancelTranscriptSelection()
					return b, cmd
				}
				b.closeSession()
			case coursesState:
				if b.coursesC.FilterState() != list.Unfiltered {
					b.coursesC, cmd = b.coursesC.Update(msg)
					return b, cmd
				}
				cmd = onListBack(&b.coursesC)
			case videosState:
				if b.videosC.FilterState() != list.Unfiltered {
					b.videosC, cmd = b.videosC.Update(msg)
					return b, cmd
				}
				cmd = onListBack(&b.videosC)
			case historyState:
				if b.historyC.FilterState() != list.Unfiltered {
					b.historyC, cmd = b.historyC.Update(msg)
					return b, cmd
				}
				cmd = onListBack(&b.historyC)
			}

			b.previousState()
			b.stopLoading()
			return b, cmd
		}
	}

	switch b.state {
	case loadingState:
		return b.updateLoading(msg)
	case historyState:
		return b.updateHistory(msg)
	case searchState:
		return b.updateSearch(msg)
	case coursesState:
		return b.updateCourses(msg)
	case videosState:
		return b.updateVideos(msg)
	case watchState:
		return b.updateWatch(msg)
	case quizState:
		return b.updateQuiz(msg)
	case reflectionState:
		return b.updateReflection(msg)
	case postWatchState:
		return b.updatePostWatch(msg)
	case errorState:
		return b.updateError(msg)
	}

	return b, cmd
}

// closeSession tears down the active watch session, if any.
func (b *statefulBubble) closeSession() {
	b.selecting = false
	if b.session != nil {
		b.session.Close()
		b.session = nil
	}
}

func (b *statefulBubble) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case []*course.Course:
		b.stopLoading()

		items := make([]list.Item, len(msg))
		for i, c := range msg {
			items[i] = &listItem{internal: c}
		}
		cmd = b.coursesC.SetItems(items)
		b.newState(coursesState)
		return b, cmd
	case *course.Course:
		b.stopLoading()
		b.selectedCourse = msg

		items := make([]list.Item, len(msg.Videos))
		for i, v := range msg.Videos {
			items[i] = &listItem{internal: v}
		}
		cmd = b.videosC.SetItems(items)
		b.newState(videosState)
		return b, cmd
	case *session.Session:
		b.stopLoading()
		b.session = msg
		b.playbackState = msg.Coordinator.State()
		b.newState(watchState)
		return b, tea.Batch(b.tickPlayback(), b.waitForGate(), b.waitForPlayerExit())
	}

	b.spinnerC, cmd = b.spinnerC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			entry, ok := b.selectedHistoryEntry()
			if !ok {
				break
			}

			b.newState(loadingState)
			return b, tea.Batch(b.startLoading(), b.continueWatching(entry), b.waitForSession())
		case bubblesKey.Matches(msg, b.keymap.remove):
			entry, ok := b.selectedHistoryEntry()
			if !ok {
				break
			}

			if err := history.Remove(entry); err != nil {
				log.Error(err)
				break
			}

			if historyCmd, err := b.loadHistory(); err == nil {
				return b, historyCmd
			}
		}
	}

	b.historyC, cmd = b.historyC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) selectedHistoryEntry() (*history.SavedVideo, bool) {
	item, ok := b.historyC.SelectedItem().(*listItem)
	if !ok {
		return nil, false
	}
	entry, ok := item.internal.(*history.SavedVideo)
	return entry, ok
}

func (b *statefulBubble) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			q := b.inputC.Value()
			if q == "" {
				break
			}

			_ = query.Remember(q, 1)

			b.newState(loadingState)
			return b, tea.Batch(b.startLoading(), b.searchCourses(q), b.waitForCourses())
		case bubblesKey.Matches(msg, b.keymap.acceptSearchSuggestion):
			if suggestion, ok := b.searchSuggestion.Get(); ok {
				b.inputC.SetValue(suggestion)
				b.inputC.CursorEnd()
			}
		}
	}

	b.inputC, cmd = b.inputC.Update(msg)
	b.searchSuggestion = query.Suggest(b.inputC.Value())

	return b, tea.Batch(cmd, textinput.Blink)
}

func (b *statefulBubble) updateCourses(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if b.coursesC.FilterState() == list.Filtering {
			break
		}

		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			item, ok := b.coursesC.SelectedItem().(*listItem)
			if !ok {
				break
			}
			selected := item.internal.(*course.Course)

			b.newState(loadingState)
			return b, tea.Batch(b.startLoading(), b.loadVideos(selected), b.waitForVideos())
		case bubblesKey.Matches(msg, b.keymap.openURL):
			if item, ok := b.coursesC.SelectedItem().(*listItem); ok {
				selected := item.internal.(*course.Course)
				if selected.URL != "" {
					_ = open.Start(selected.URL)
				}
			}
		}
	}

	b.coursesC, cmd = b.coursesC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateVideos(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if b.videosC.FilterState() == list.Filtering {
			break
		}

		switch {
		case bubblesKey.Matches(msg, b.keymap.watch):
			item, ok := b.videosC.SelectedItem().(*listItem)
			if !ok {
				break
			}
			video := item.internal.(*course.Video)

			b.newState(loadingState)
			return b, tea.Batch(b.startLoading(), b.watchVideo(video), b.waitForSession())
		case bubblesKey.Matches(msg, b.keymap.openURL):
			if item, ok := b.videosC.SelectedItem().(*listItem); ok {
				video := item.internal.(*course.Video)
				_ = open.Start(video.URL)
			}
		}
	}

	b.videosC, cmd = b.videosC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateWatch(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if b.session == nil {
		b.previousState()
		return b, nil
	}

	switch msg := msg.(type) {
	case playbackTickMsg:
		b.playbackState = b.session.Coordinator.State()
		return b, b.tickPlayback()
	case checkpointGateMsg:
		cp := checkpoint.Checkpoint(msg)
		b.activeCheckpoint = &cp

		switch cp.Kind {
		case checkpoint.Quiz:
			items := make([]list.Item, len(cp.Options))
			for i, option := range cp.Options {
				items[i] = &listItem{internal: option}
			}
			cmd = b.quizC.SetItems(items)
			b.quizC.ResetSelected()
			b.setState(quizState)
		case checkpoint.Reflection:
			b.reflectionC.SetValue("")
			b.reflectionC.Focus()
			b.setState(reflectionState)
		default:
			// Voice memos and unknown kinds open externally and resume.
			if cp.AttachmentURL != "" {
				_ = open.Start(cp.AttachmentURL)
			}
			_ = b.session.Clock.Play()
			return b, b.waitForGate()
		}

		return b, cmd
	case playerExitMsg:
		b.closeSession()
		b.newState(postWatchState)
		b.postWatchC.Select(0)
		return b, nil
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.playPause):
			if err := b.session.Clock.Toggle(); err != nil {
				log.Error(err)
			}
		case bubblesKey.Matches(msg, b.keymap.seekBack):
			if err := b.session.Clock.Skip(-seekStep()); err != nil {
				log.Error(err)
			}
		case bubblesKey.Matches(msg, b.keymap.seekForward):
			if err := b.session.Clock.Skip(seekStep()); err != nil {
				log.Error(err)
			}
		case bubblesKey.Matches(msg, b.keymap.mute):
			if err := b.session.Clock.ToggleMute(); err != nil {
				log.Error(err)
			}
		case bubblesKey.Matches(msg, b.keymap.setInPoint):
			b.session.Agent.SetInPoint(b.playbackState.CurrentTime)
		case bubblesKey.Matches(msg, b.keymap.setOutPoint):
			b.session.Agent.SetOutPoint(b.playbackState.CurrentTime)
		case bubblesKey.Matches(msg, b.keymap.selectTranscript):
			if b.selecting {
				b.selecting = false
			} else if !b.startTranscriptSelection() {
				return b, tea.Batch(cmd, func() tea.Msg { return "No transcript available" })
			}
		case bubblesKey.Matches(msg, b.keymap.up):
			b.moveTranscriptSelection(-1)
		case bubblesKey.Matches(msg, b.keymap.down):
			b.moveTranscriptSelection(1)
		case bubblesKey.Matches(msg, b.keymap.sendSegment):
			b.session.Agent.SendSegment()
			if b.selecting {
				b.selecting = false
				return b, tea.Batch(cmd, func() tea.Msg { return "Segment sent to chat" })
			}
		case bubblesKey.Matches(msg, b.keymap.clearSelection):
			b.selecting = false
			b.session.Agent.ClearSegment()
		case bubblesKey.Matches(msg, b.keymap.askAgent):
			b.session.Agent.ButtonClicked("ask-assistant")
			return b, tea.Batch(cmd, func() tea.Msg { return "Asked the assistant about this moment" })
		}
	}

	b.spinnerC, cmd = b.spinnerC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateQuiz(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case quizGradedMsg:
		b.activeCheckpoint = nil
		b.setState(watchState)

		var note string
		if msg.correct {
			note = "Correct!"
		} else {
			note = "Not quite - keep going"
		}
		if !msg.delivered {
			note += " (answer queued)"
		}

		if b.session != nil {
			_ = b.session.Clock.Play()
			return b, tea.Batch(b.tickPlayback(), b.waitForGate(), func() tea.Msg { return note })
		}
		return b, func() tea.Msg { return note }
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			if b.activeCheckpoint == nil || b.session == nil {
				b.setState(watchState)
				break
			}

			item, ok := b.quizC.SelectedItem().(*listItem)
			if !ok {
				break
			}
			answer := item.internal.(string)

			return b, b.submitQuizAnswer(*b.activeCheckpoint, answer)
		}
	}

	b.quizC, cmd = b.quizC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateReflection(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case reflectionSentMsg:
		b.activeCheckpoint = nil
		b.reflectionC.Blur()
		b.setState(watchState)

		if b.session != nil {
			_ = b.session.Clock.Play()
			return b, tea.Batch(b.tickPlayback(), b.waitForGate(), func() tea.Msg { return "Reflection saved" })
		}
		return b, nil
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			if b.activeCheckpoint == nil || b.session == nil {
				b.reflectionC.Blur()
				b.setState(watchState)
				break
			}

			text := b.reflectionC.Value()
			if text == "" {
				break
			}

			return b, b.submitReflection(*b.activeCheckpoint, text)
		case bubblesKey.Matches(msg, b.keymap.back):
			// Skip the reflection and resume playback.
			b.activeCheckpoint = nil
			b.reflectionC.Blur()
			b.setState(watchState)
			if b.session != nil {
				_ = b.session.Clock.Play()
				return b, tea.Batch(b.tickPlayback(), b.waitForGate())
			}
			return b, nil
		}
	}

	// While the reflection input is focused every other key is text.
	b.reflectionC, cmd = b.reflectionC.Update(msg)
	return b, tea.Batch(cmd, textinput.Blink)
}

func (b *statefulBubble) updatePostWatch(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			item, ok := b.postWatchC.SelectedItem().(*listItem)
			if !ok {
				break
			}

			switch item.internal.(string) {
			case "Next":
				if next, ok := b.adjacentVideo(1); ok {
					b.newState(loadingState)
					return b, tea.Batch(b.startLoading(), b.watchVideo(next), b.waitForSession())
				}
			case "Replay":
				if b.selectedVideo != nil {
					b.newState(loadingState)
					return b, tea.Batch(b.startLoading(), b.watchVideo(b.selectedVideo), b.waitForSession())
				}
			case "Previous":
				if prev, ok := b.adjacentVideo(-1); ok {
					b.newState(loadingState)
					return b, tea.Batch(b.startLoading(), b.watchVideo(prev), b.waitForSession())
				}
			case "Back to Videos":
				b.newState(videosState)
				return b, nil
			}
		}
	}

	b.postWatchC, cmd = b.postWatchC.Update(msg)
	return b, cmd
}

// adjacentVideo returns the lesson at the given offset from the last watched
// one within the selected course.
func (b *statefulBubble) adjacentVideo(offset int) (*course.Video, bool) {
	if b.selectedCourse == nil || b.selectedVideo == nil {
		return nil, false
	}

	for i, v := range b.selectedCourse.Videos {
		if v.ID == b.selectedVideo.ID {
			j := i + offset
			if j >= 0 && j < len(b.selectedCourse.Videos) {
				return b.selectedCourse.Videos[j], true
			}
			return nil, false
		}
	}

	return nil, false
}

func (b *statefulBubble) updateError(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.quit):
			return b, tea.Quit
		case bubblesKey.Matches(msg, b.keymap.back):
			b.previousState()
			return b, nil
		}
	}
	return b, cmd
}
