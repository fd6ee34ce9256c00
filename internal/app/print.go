package app

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize/english"

	"github.com/mmcdole/kinoteka/internal/domain"
	"github.com/mmcdole/kinoteka/internal/tui/components"
)

// pagePresenter keeps the last view update for non-interactive output
type pagePresenter struct {
	mu      sync.Mutex
	page    *domain.ResultPage
	empty   bool
	err     error
	link    string
	hasLink bool
}

func (p *pagePresenter) ShowYearBounds(domain.YearRange)   {}
func (p *pagePresenter) ShowForm(domain.SearchFilters)     {}
func (p *pagePresenter) ShowLoading(domain.Mode)           {}
func (p *pagePresenter) ShowGenres([]domain.Genre)         {}
func (p *pagePresenter) HistoryChanged(domain.HistoryKind) {}

func (p *pagePresenter) ShowResults(r domain.ResultPage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page, p.empty, p.err = &r, false, nil
}

func (p *pagePresenter) ShowNoResults(r domain.ResultPage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page, p.empty, p.err = &r, true, nil
}

func (p *pagePresenter) ShowError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *pagePresenter) Replace(link string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.link, p.hasLink = link, true
}

// runPrint loads one page and writes it as plain text
func (a *App) runPrint(ctx context.Context, opts RunOptions) error {
	p := &pagePresenter{}
	s := a.newSearcher(p, p)
	defer s.Wait()

	if err := a.startup(s, opts)(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return fmt.Errorf("%s: %w", components.ErrorText(p.err), p.err)
	}
	if p.hasLink {
		if err := a.store.SaveLink(p.link); err != nil {
			a.logger.Warn("failed to persist link", "error", err)
		}
	}
	return writePage(opts.Out, p.page, p.empty, a.cfg.Server.URL)
}

// writePage renders a result page as text, one movie per line
func writePage(w io.Writer, page *domain.ResultPage, empty bool, baseURL string) error {
	if page == nil {
		return nil
	}

	title := "New movies"
	if page.Mode == domain.ModeSearch && page.Header != "" {
		title = page.Header
	}
	fmt.Fprintln(w, title)

	if empty || len(page.Items) == 0 {
		_, err := fmt.Fprintln(w, "No movies found.")
		return err
	}

	offset := (page.Page - 1) * page.Limit
	for i, m := range page.Items {
		fmt.Fprintf(w, "%3d. %s\n", offset+i+1, components.MovieLine(m, baseURL))
	}

	summary := english.Plural(page.Total, "movie", "movies")
	if pg := components.Pagination(page.Total, page.Page, page.Limit); pg.Visible {
		summary = pg.Label + " · " + summary
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}
