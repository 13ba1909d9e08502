// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"github.com/unpuzzle-app/unpuzzle/checkpoint"
	"github.com/unpuzzle-app/unpuzzle/constant"
	"github.com/unpuzzle-app/unpuzzle/course"
	"github.com/unpuzzle-app/unpuzzle/internal/session"
	"github.com/unpuzzle-app/unpuzzle/internal/ui"
	"github.com/unpuzzle-app/unpuzzle/key"
	"github.com/unpuzzle-app/unpuzzle/playback"
	"github.com/unpuzzle-app/unpuzzle/style"
	"github.com/unpuzzle-app/unpuzzle/util"
)

// statefulBubble encapsulates the comprehensive application state, including component models and workflow tracking.
type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]
	loading       bool
	busy          bool // Protects against rapid input during async ops

	keymap *statefulKeymap

	// components
	spinnerC    spinner.Model
	inputC      textinput.Model
	historyC    list.Model
	coursesC    list.Model
	videosC     list.Model
	quizC       list.Model
	postWatchC  list.Model
	reflectionC textinput.Model
	progressC   progress.Model
	helpC       help.Model

	selectedCourse *course.Course
	selectedVideo  *course.Video

	foundCoursesChannel chan []*course.Course
	loadedVideosChannel chan *course.Course
	sessionChannel      chan *session.Session
	errorChannel        chan error

	progressStatus string

	session          *session.Session
	playbackState    playback.State
	activeCheckpoint *checkpoint.Checkpoint
	lastError        error

	// transcript selection mode within the watch view
	selecting       bool
	selectionAnchor int
	selectionCursor int

	width, height    int
	searchSuggestion mo.Option[string]
	notifier         *ui.Model

	options *Options
}

// raiseError dispatches a terminal error and transitions the application to the failure view.
func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

// setState performs a synchronous transition of both the application workflow and its associated keymap.
func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState facilitates an idempotent transition to a target state, recording the previous state in the navigation history when appropriate.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	// Do not push these states to history
	if !lo.Contains([]state{
		loadingState,
		watchState,
		quizState,
		reflectionState,
	}, b.state) {
		b.statesHistory.Push(b.state)
	}

	b.setState(s)
}

// previousState restores the application to its immediate predecessor in the navigation stack.
func (b *statefulBubble) previousState() {
	if b.statesHistory.Len() > 0 {
		s := b.statesHistory.Pop()
		b.setState(s)
	}
}

// resize propagates terminal dimension changes to all child component models.
func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	styledWidth := width - x
	styledHeight := height - y

	listWidth := width - xx
	listHeight := height - yy

	b.historyC.SetSize(listWidth, listHeight)
	b.historyC.Help.Width = listWidth

	b.coursesC.SetSize(listWidth, listHeight)
	b.coursesC.Help.Width = listWidth

	b.videosC.SetSize(listWidth, listHeight)
	b.videosC.Help.Width = listWidth

	b.quizC.SetSize(listWidth, listHeight)
	b.quizC.Help.Width = listWidth

	b.postWatchC.SetSize(listWidth, listHeight)
	b.postWatchC.Help.Width = listWidth

	b.progressC.Width = listWidth
	b.reflectionC.Width = listWidth

	b.width = styledWidth
	b.height = styledHeight
	b.helpC.Width = listWidth
}

// startLoading enters a concurrent loading state, initializing visual indicators across child components.
func (b *statefulBubble) startLoading() tea.Cmd {
	b.loading = true
	b.busy = true
	return tea.Batch(b.coursesC.StartSpinner(), b.videosC.StartSpinner())
}

// stopLoading exits the loading state and synchronizes child component visual indicators.
func (b *statefulBubble) stopLoading() tea.Cmd {
	b.loading = false
	b.busy = false
	b.coursesC.StopSpinner()
	b.videosC.StopSpinner()
	return nil
}

// newBubble performs a complete initialization of the application's primary UI model.
func newBubble(options *Options) *statefulBubble {
	keymap := newStatefulKeymap()
	bubble := statefulBubble{
		statesHistory: util.Stack[state]{},
		keymap:        keymap,

		foundCoursesChannel: make(chan []*course.Course),
		loadedVideosChannel: make(chan *course.Course),
		sessionChannel:      make(chan *session.Session),
		errorChannel:        make(chan error),

		notifier: &ui.Model{},
	}

	type listOptions struct {
		TitleStyle mo.Option[lipgloss.Style]
	}

	makeList := func(title string, description bool, options *listOptions) list.Model {
		delegate := list.NewDefaultDelegate()
		delegate.SetSpacing(viper.GetInt(key.TUIItemSpacing))
		delegate.ShowDescription = description
		delegate.Styles.SelectedTitle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(style.AccentColor).
			Foreground(style.AccentColor).
			Padding(0, 0, 0, 1)
		delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("7"))
		delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

		listC := list.New([]list.Item{}, delegate, 0, 0)
		listC.KeyMap = bubble.keymap.forList()
		listC.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
		listC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
			return bubble.keymap.FullHelp()[0]
		}
		listC.Title = title
		listC.Styles.NoItems = paddingStyle
		if titleStyle, ok := options.TitleStyle.Get(); ok {
			listC.Styles.Title = titleStyle
		}
		listC.StatusMessageLifetime = time.Hour * 999
		listC.SetShowPagination(false)
		listC.SetShowStatusBar(false)

		return listC
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bubble.inputC = textinput.New()
	bubble.inputC.Placeholder = fmt.Sprintf("Search Courses (v%s)", constant.Version)
	bubble.inputC.CharLimit = 60
	bubble.inputC.Prompt = viper.GetString(key.TUISearchPromptString)

	bubble.progressC = progress.New(progress.WithDefaultGradient())

	bubble.reflectionC = textinput.New()
	bubble.reflectionC.Placeholder = "Your reflection..."
	bubble.reflectionC.CharLimit = 500
	bubble.reflectionC.Prompt = "> "

	bubble.historyC = makeList("History", true, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.Yellow).Padding(0, 1),
		),
	})
	bubble.historyC.SetStatusBarItemName("entry", "entries")

	bubble.coursesC = makeList("Courses", true, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.Lavender).Padding(0, 1),
		),
	})
	bubble.coursesC.SetStatusBarItemName("course", "courses")

	bubble.videosC = makeList("Videos", true, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.Peach).Padding(0, 1),
		),
	})
	bubble.videosC.SetStatusBarItemName("video", "videos")

	bubble.quizC = makeList("Quiz", false, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.Blue).Padding(0, 1),
		),
	})
	bubble.quizC.SetStatusBarItemName("option", "options")

	bubble.postWatchC = makeList("Post-Watch Menu", false, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.Mauve).Padding(0, 1),
		),
	})
	bubble.postWatchC.SetItems([]list.Item{
		&listItem{internal: "Next"},
		&listItem{internal: "Replay"},
		&listItem{internal: "Previous"},
		&listItem{internal: "Back to Videos"},
	})
	bubble.postWatchC.SetStatusBarItemName("option", "options")

	bubble.options = options

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	bubble.inputC.Focus()

	return &bubble
}
