package tui

import (
	"github.com/mmcdole/kinoteka/internal/domain"
	"github.com/mmcdole/kinoteka/internal/service"
)

// Message types for the TUI

// Presenter messages, sent by ChannelPresenter in the order the searcher produced them

// YearBoundsMsg carries the catalog year range
type YearBoundsMsg struct {
	Bounds domain.YearRange
}

// FormMsg asks the form to show filter values
type FormMsg struct {
	Filters domain.SearchFilters
}

// LoadingMsg signals a request has started
type LoadingMsg struct {
	Mode domain.Mode
}

// ResultsMsg carries a page of movies
type ResultsMsg struct {
	Page domain.ResultPage
}

// NoResultsMsg signals an empty result
type NoResultsMsg struct {
	Page domain.ResultPage
}

// ErrMsg represents a failed request
type ErrMsg struct {
	Err error
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	return e.Err.Error()
}

// GenresMsg carries the genre list
type GenresMsg struct {
	Genres []domain.Genre
}

// HistoryChangedMsg signals that a history feed has new entries
type HistoryChangedMsg struct {
	Kind domain.HistoryKind
}

// LinkMsg carries the link of the search on screen
type LinkMsg struct {
	Link string
}

// Command results

// PanelTimerMsg fires a debounce timer of a history panel
type PanelTimerMsg struct {
	Kind  domain.HistoryKind
	Timer service.PanelTimer
}

// PanelLoadedMsg signals a history panel finished loading
type PanelLoadedMsg struct {
	Kind domain.HistoryKind
	Err  error
}

// DoneMsg signals a searcher operation returned
type DoneMsg struct {
	Op  string
	Err error
}

// OpenedMsg signals a browser launch
type OpenedMsg struct {
	URL string
	Err error
}

// presenterClosedMsg signals the presenter channel was closed
type presenterClosedMsg struct{}
