// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
	"github.com/unpuzzle-app/unpuzzle/course"
	"github.com/unpuzzle-app/unpuzzle/history"
	"github.com/unpuzzle-app/unpuzzle/key"
	"github.com/unpuzzle-app/unpuzzle/style"
	"github.com/unpuzzle-app/unpuzzle/util"
)

// listItem implements the list.Item interface, wrapping various domain models for terminal display.
type listItem struct {
	internal interface{}
}

// Title retrieves the primary display text for the list item.
func (t *listItem) Title() (title string) {
	switch e := t.internal.(type) {
	case *course.Course:
		title = e.Title
	case *course.Video:
		title = e.Title
		if viper.GetBool(key.TUIShowTimestamps) && e.Duration > 0 {
			title = fmt.Sprintf("%s %s", title, style.Faint(formatDuration(e.Duration)))
		}
	case *history.SavedVideo:
		title = e.CourseTitle
	case string:
		title = e
	default:
		title = t.FilterValue()
	}

	return
}

// Description retrieves the secondary metadata line for the list item.
func (t *listItem) Description() (description string) {
	switch e := t.internal.(type) {
	case *course.Course:
		if e.Instructor != "" {
			description = fmt.Sprintf("%s • %d videos", e.Instructor, util.Max(e.VideoCount, len(e.Videos)))
		} else {
			description = fmt.Sprintf("%d videos", util.Max(e.VideoCount, len(e.Videos)))
		}
	case *course.Video:
		description = ""
	case *history.SavedVideo:
		completionThreshold := viper.GetFloat64(key.PlayerCompletionPercentage)
		if completionThreshold <= 0 {
			completionThreshold = 80.0
		}
		progressStr := ""
		if e.WatchedPercentage > 0 && e.WatchedPercentage < completionThreshold {
			progressStr = lipgloss.NewStyle().Foreground(style.Yellow).Render(fmt.Sprintf(" (%.0f%%)", e.WatchedPercentage))
		} else if e.WatchedPercentage >= completionThreshold {
			progressStr = lipgloss.NewStyle().Foreground(style.Green).Render(" (Watched)")
		}
		description = fmt.Sprintf("%s : %d / %d%s", e.Title, e.Index, e.CourseVideosTotal, progressStr)
	case string:
		description = ""
	}

	return
}

// FilterValue returns the string used for real-time list filtering and searching.
func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case *course.Course:
		return e.Title
	case *course.Video:
		return e.Title
	case *history.SavedVideo:
		return e.CourseTitle
	case string:
		return e
	default:
		return ""
	}
}

// formatDuration renders a second count as m:ss or h:mm:ss.
func formatDuration(seconds float64) string {
	d := time.Duration(seconds) * time.Second
	if d >= time.Hour {
		return fmt.Sprintf("%d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	}
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
