package tui

import (
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/kinoteka/internal/domain"
)

// LinkSaver persists the link of the search on screen
type LinkSaver interface {
	SaveLink(link string) error
}

// ChannelPresenter adapts service.Presenter and service.Location to a
// channel of Bubble Tea messages. Sends block until the model reads them
// or the presenter is closed, so no view update is lost.
type ChannelPresenter struct {
	ch     chan tea.Msg
	done   chan struct{}
	once   sync.Once
	links  LinkSaver
	logger *slog.Logger
}

// NewChannelPresenter creates a presenter. links may be nil.
func NewChannelPresenter(buffer int, links LinkSaver, logger *slog.Logger) *ChannelPresenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChannelPresenter{
		ch:     make(chan tea.Msg, buffer),
		done:   make(chan struct{}),
		links:  links,
		logger: logger,
	}
}

// Messages returns the channel read by the model
func (p *ChannelPresenter) Messages() <-chan tea.Msg {
	return p.ch
}

// Close unblocks pending and future sends
func (p *ChannelPresenter) Close() {
	p.once.Do(func() { close(p.done) })
}

func (p *ChannelPresenter) send(msg tea.Msg) {
	select {
	case p.ch <- msg:
	case <-p.done:
	}
}

func (p *ChannelPresenter) ShowYearBounds(r domain.YearRange) { p.send(YearBoundsMsg{Bounds: r}) }
func (p *ChannelPresenter) ShowForm(f domain.SearchFilters)   { p.send(FormMsg{Filters: f}) }
func (p *ChannelPresenter) ShowLoading(mode domain.Mode)      { p.send(LoadingMsg{Mode: mode}) }
func (p *ChannelPresenter) ShowResults(r domain.ResultPage)   { p.send(ResultsMsg{Page: r}) }
func (p *ChannelPresenter) ShowNoResults(r domain.ResultPage) { p.send(NoResultsMsg{Page: r}) }
func (p *ChannelPresenter) ShowError(err error)               { p.send(ErrMsg{Err: err}) }
func (p *ChannelPresenter) ShowGenres(genres []domain.Genre)  { p.send(GenresMsg{Genres: genres}) }

func (p *ChannelPresenter) HistoryChanged(kind domain.HistoryKind) {
	p.send(HistoryChangedMsg{Kind: kind})
}

// Replace implements service.Location: it shows the link and persists it
func (p *ChannelPresenter) Replace(link string) {
	if p.links != nil {
		if err := p.links.SaveLink(link); err != nil {
			p.logger.Warn("failed to persist link", "error", err)
		}
	}
	p.send(LinkMsg{Link: link})
}

// WaitForPresenterCmd reads the next presenter message
func WaitForPresenterCmd(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return presenterClosedMsg{}
		}
		return msg
	}
}
