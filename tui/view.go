// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/unpuzzle-app/unpuzzle/icon"
	"github.com/unpuzzle-app/unpuzzle/style"
	"github.com/unpuzzle-app/unpuzzle/util"
)

var (
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
)

func (b *statefulBubble) View() string {
	var view string

	switch b.state {
	case loadingState:
		view = b.viewLoading()
	case historyState:
		view = listExtraPaddingStyle.Render(b.historyC.View())
	case searchState:
		view = b.viewSearch()
	case coursesState:
		view = listExtraPaddingStyle.Render(b.coursesC.View())
	case videosState:
		view = listExtraPaddingStyle.Render(b.videosC.View())
	case watchState:
		view = b.viewWatch()
	case quizState:
		view = b.viewQuiz()
	case reflectionState:
		view = b.viewReflection()
	case postWatchState:
		view = b.viewPostWatch()
	case errorState:
		view = b.viewError()
	default:
		view = ""
	}

	return b.notifier.View(view)
}

func (b *statefulBubble) viewLoading() string {
	status := b.progressStatus
	if status == "" {
		status = "Loading"
	}

	return b.renderLines(
		true,
		style.Title("Loading"),
		"",
		fmt.Sprintf("%s %s", b.spinnerC.View(), status),
	)
}

func (b *statefulBubble) viewSearch() string {
	lines := []string{
		style.Title("Search Courses"),
		"",
		b.inputC.View(),
	}

	if suggestion, ok := b.searchSuggestion.Get(); ok && suggestion != b.inputC.Value() {
		lines = append(
			lines,
			"",
			style.Faint(fmt.Sprintf("%s %s (tab to accept)", icon.Get(icon.Search), suggestion)),
		)
	}

	return b.renderLines(true, lines...)
}

func (b *statefulBubble) viewWatch() string {
	if b.session == nil {
		return b.renderLines(true, style.Faint("No active session"))
	}

	state := b.playbackState

	var playbackIcon string
	if state.IsPlaying {
		playbackIcon = icon.Get(icon.Play)
	} else {
		playbackIcon = icon.Get(icon.Pause)
	}

	var volume string
	if state.IsMuted {
		volume = icon.Get(icon.Mute)
	} else {
		volume = fmt.Sprintf("%s %d%%", icon.Get(icon.Volume), int(state.Volume*100))
	}

	var ratio float64
	if state.Duration > 0 {
		ratio = state.CurrentTime / state.Duration
	}

	lines := []string{
		style.Title(b.session.Video.String()),
		"",
		b.progressC.ViewAs(ratio),
		fmt.Sprintf(
			"%s %s / %s  %s",
			playbackIcon,
			formatDuration(state.CurrentTime),
			formatDuration(state.Duration),
			volume,
		),
	}

	if state.PlaybackRate != 1 && state.PlaybackRate != 0 {
		lines = append(lines, style.Faint(fmt.Sprintf("%.2gx speed", state.PlaybackRate)))
	}

	if b.session.Transcript != nil {
		if b.selecting {
			lines = append(lines, "", b.viewTranscriptSelection())
		} else if segment, ok := b.session.Transcript.SegmentAt(state.CurrentTime); ok {
			lines = append(lines, "", style.Fg(style.Subtext)(wrap.String(segment.Text, b.width)))
		}
	}

	if in, out := b.session.Selection.Range(); in.IsPresent() || out.IsPresent() {
		marker := func(label string, value float64, set bool) string {
			if !set {
				return label + " --:--"
			}
			return label + " " + formatDuration(value)
		}

		lines = append(lines, "", style.Faint(fmt.Sprintf(
			"%s %s  %s",
			icon.Get(icon.Mark),
			marker("in", in.OrElse(0), in.IsPresent()),
			marker("out", out.OrElse(0), out.IsPresent()),
		)))
	}

	lines = append(lines, "", b.helpC.View(b.keymap))

	return b.renderLines(true, lines...)
}

// viewTranscriptSelection renders a window of transcript rows around the
// selection, highlighting the selected ones.
func (b *statefulBubble) viewTranscriptSelection() string {
	segments := b.session.Transcript.Segments
	lo, hi := b.selectionAnchor, b.selectionCursor
	if lo > hi {
		lo, hi = hi, lo
	}

	const context = 2
	from := util.Max(0, lo-context)
	to := util.Min(len(segments)-1, hi+context)

	rows := make([]string, 0, to-from+2)
	rows = append(rows, style.Faint("↑/↓ extend, s send, v done, esc cancel"))
	for i := from; i <= to; i++ {
		text := wrap.String(segments[i].Text, util.Max(b.width-2, 1))
		if i >= lo && i <= hi {
			rows = append(rows, style.Fg(style.Peach)("▌ "+text))
		} else {
			rows = append(rows, style.Faint("  "+text))
		}
	}
	return strings.Join(rows, "\n")
}

func (b *statefulBubble) viewQuiz() string {
	if b.activeCheckpoint == nil {
		return listExtraPaddingStyle.Render(b.quizC.View())
	}

	question := wrap.String(b.activeCheckpoint.Question, b.width)
	header := paddingStyle.Render(fmt.Sprintf("%s %s", icon.Get(icon.Question), question))

	return lipgloss.JoinVertical(lipgloss.Left, header, listExtraPaddingStyle.Render(b.quizC.View()))
}

func (b *statefulBubble) viewReflection() string {
	lines := []string{
		style.Title("Reflection"),
		"",
	}

	if b.activeCheckpoint != nil && b.activeCheckpoint.Prompt != "" {
		lines = append(lines, fmt.Sprintf(
			"%s %s",
			icon.Get(icon.Reflection),
			wrap.String(b.activeCheckpoint.Prompt, b.width),
		), "")
	}

	lines = append(
		lines,
		b.reflectionC.View(),
		"",
		style.Faint("enter to submit, esc to skip"),
	)

	return b.renderLines(true, lines...)
}

func (b *statefulBubble) viewPostWatch() string {
	var header string
	if b.selectedVideo != nil {
		header = paddingStyle.Render(fmt.Sprintf(
			"%s Finished %s",
			icon.Get(icon.Success),
			style.Bold(b.selectedVideo.String()),
		))
	}

	if header == "" {
		return listExtraPaddingStyle.Render(b.postWatchC.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, listExtraPaddingStyle.Render(b.postWatchC.View()))
}

func (b *statefulBubble) viewError() string {
	errorMsg := "Unknown error"
	if b.lastError != nil {
		errorMsg = b.lastError.Error()
	}

	return b.renderLines(
		true,
		style.ErrorTitle("Error"),
		"",
		fmt.Sprintf("%s %s", icon.Get(icon.Fail), wrap.String(errorMsg, b.width)),
		"",
		style.Faint("esc to go back, q to quit"),
	)
}

// renderLines joins the given lines and applies the standard content padding.
func (b *statefulBubble) renderLines(padding bool, lines ...string) string {
	joined := strings.Join(lines, "\n")
	if padding {
		return paddingStyle.Render(joined)
	}
	return joined
}
