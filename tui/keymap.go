// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/unpuzzle-app/unpuzzle/color"
	"github.com/unpuzzle-app/unpuzzle/style"
)

// statefulKeymap defines the keyboard interactions available within various application states.
type statefulKeymap struct {
	state state

	quit, forceQuit,
	confirm,
	acceptSearchSuggestion,
	remove,
	openURL,
	watch,
	back,
	up, down, left, right,
	top, bottom,
	playPause, seekBack, seekForward, mute,
	setInPoint, setOutPoint, sendSegment, clearSelection,
	selectTranscript, askAgent,
	replay, nextVideo, prevVideo,
	showHelp key.Binding
}

// setState updates the active keymap configuration to match the specified application state.
func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		acceptSearchSuggestion: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "accept search suggestion"),
		),
		remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove"),
		),
		openURL: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "open url"),
		),
		watch: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp(style.Fg(color.Orange)("enter"), style.Fg(color.Orange)("watch")),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "down"),
		),
		left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "left"),
		),
		right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "right"),
		),
		top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "top"),
		),
		bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "bottom"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause/resume"),
		),
		seekBack: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "seek back"),
		),
		seekForward: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "seek forward"),
		),
		mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		setInPoint: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "set in point"),
		),
		setOutPoint: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "set out point"),
		),
		sendSegment: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "send segment to chat"),
		),
		clearSelection: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("backspace", "clear selection"),
		),
		selectTranscript: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "select transcript"),
		),
		askAgent: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "ask assistant"),
		),
		replay: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "replay"),
		),
		nextVideo: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next video"),
		),
		prevVideo: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "prev video"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	to2 := func(a []key.Binding) ([]key.Binding, []key.Binding) {
		return a, a
	}

	switch k.state {
	case loadingState:
		return to2(h(k.forceQuit, k.back))
	case historyState:
		return to2(h(k.confirm, k.remove, k.back))
	case searchState:
		return to2(h(k.confirm, k.acceptSearchSuggestion, k.forceQuit))
	case coursesState:
		return to2(h(k.confirm, k.openURL, k.back))
	case videosState:
		return to2(h(k.watch, k.openURL, k.back))
	case watchState:
		return h(k.playPause, k.seekBack, k.seekForward, k.selectTranscript, k.setInPoint, k.setOutPoint, k.back),
			h(k.playPause, k.seekBack, k.seekForward, k.mute, k.selectTranscript, k.setInPoint, k.setOutPoint, k.sendSegment, k.clearSelection, k.askAgent, k.back)
	case quizState:
		return to2(h(k.confirm, k.up, k.down))
	case reflectionState:
		return to2(h(k.confirm, k.back))
	case postWatchState:
		return to2(h(k.confirm, k.back))
	case errorState:
		return to2(h(k.back, k.quit))
	default:
		return to2(h())
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}

func (k *statefulKeymap) forList() list.KeyMap {
	return list.KeyMap{
		CursorUp:             k.up,
		CursorDown:           k.down,
		NextPage:             k.right,
		PrevPage:             k.left,
		GoToStart:            k.top,
		GoToEnd:              k.bottom,
		ClearFilter:          k.back,
		CancelWhileFiltering: k.back,
		AcceptWhileFiltering: k.confirm,
		ShowFullHelp:         k.showHelp,
		CloseFullHelp:        k.showHelp,
		Quit:                 k.quit,
		ForceQuit:            k.forceQuit,
	}
}
