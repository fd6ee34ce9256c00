package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/kinoteka/internal/domain"
	"github.com/mmcdole/kinoteka/internal/service"
)

// Command factories for async operations. Searcher and panel methods block
// on the network, so they only ever run inside commands.

// Opener opens movie detail pages
type Opener interface {
	OpenMovie(m domain.Movie) error
	MovieURL(m domain.Movie) string
}

// searcherCmd runs a searcher operation and reports its outcome.
// Failures are already presented, so the error is informational.
func searcherCmd(op string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return DoneMsg{Op: op, Err: fn()}
	}
}

// StartCmd runs the startup sequence
func StartCmd(ctx context.Context, start func(ctx context.Context) error) tea.Cmd {
	return searcherCmd("start", func() error { return start(ctx) })
}

// SearchCmd searches from page 1 with the form values
func SearchCmd(ctx context.Context, s *service.Searcher, form domain.SearchFilters) tea.Cmd {
	return searcherCmd("search", func() error { return s.Search(ctx, form) })
}

// NextPageCmd turns to the next page
func NextPageCmd(ctx context.Context, s *service.Searcher) tea.Cmd {
	return searcherCmd("next page", func() error { return s.NextPage(ctx) })
}

// PrevPageCmd turns to the previous page
func PrevPageCmd(ctx context.Context, s *service.Searcher) tea.Cmd {
	return searcherCmd("previous page", func() error { return s.PreviousPage(ctx) })
}

// ResetFiltersCmd clears the form and reloads new movies
func ResetFiltersCmd(ctx context.Context, s *service.Searcher) tea.Cmd {
	return searcherCmd("reset", func() error { return s.ResetAllFilters(ctx) })
}

// NewMoviesCmd returns to the new movies listing
func NewMoviesCmd(ctx context.Context, s *service.Searcher) tea.Cmd {
	return searcherCmd("new movies", func() error { return s.ResetToNewMovies(ctx) })
}

// RetryCmd re-runs the last fetch
func RetryCmd(ctx context.Context, s *service.Searcher) tea.Cmd {
	return searcherCmd("retry", func() error { return s.Retry(ctx) })
}

// PanelTimerCmd delivers a panel debounce timer after its delay
func PanelTimerCmd(kind domain.HistoryKind, t service.PanelTimer) tea.Cmd {
	return tea.Tick(t.Delay, func(time.Time) tea.Msg {
		return PanelTimerMsg{Kind: kind, Timer: t}
	})
}

// LoadPanelCmd fetches the feed of a history panel
func LoadPanelCmd(ctx context.Context, p *service.HistoryPanel) tea.Cmd {
	return func() tea.Msg {
		return PanelLoadedMsg{Kind: p.Kind(), Err: p.Load(ctx)}
	}
}

// SelectHistoryCmd runs the selection handler of a history entry
func SelectHistoryCmd(ctx context.Context, p *service.HistoryPanel, i int) tea.Cmd {
	return searcherCmd("history "+p.Kind().String(), func() error { return p.Select(ctx, i) })
}

// OpenMovieCmd opens the detail page of m in the browser
func OpenMovieCmd(o Opener, m domain.Movie) tea.Cmd {
	return func() tea.Msg {
		return OpenedMsg{URL: o.MovieURL(m), Err: o.OpenMovie(m)}
	}
}
