// Package tui provides the primary terminal user interface implementation.
package tui

type state int

const (
	loadingState state = iota
	errorState
	historyState
	searchState
	coursesState
	videosState
	watchState
	quizState
	reflectionState
	postWatchState
)
