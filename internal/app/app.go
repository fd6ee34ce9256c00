// Package app wires configuration, clients, storage and the user interface.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/kinoteka/internal/adapter"
	"github.com/mmcdole/kinoteka/internal/api"
	"github.com/mmcdole/kinoteka/internal/domain"
	"github.com/mmcdole/kinoteka/internal/service"
	"github.com/mmcdole/kinoteka/internal/store"
	"github.com/mmcdole/kinoteka/internal/tui"
)

// presenterBuffer is how many view updates may queue before the searcher waits
const presenterBuffer = 64

// RunOptions selects what Run shows first
type RunOptions struct {
	Link  string    // shareable link; empty resumes the stored link
	Query string    // keyword, overrides Link
	Genre string    // genre name or ID, overrides Link
	Page  int       // page to turn to after loading
	Print bool      // print one page instead of starting the TUI
	Out   io.Writer // print destination, defaults to stdout
}

// App is the application root. It owns every long-lived component.
type App struct {
	cfg      *adapter.Config
	logger   *slog.Logger
	films    domain.FilmsRepository
	meta     *api.MetaClient
	store    *store.SessionStore
	launcher *adapter.Launcher
	metrics  *metricsServer
	now      func() time.Time
}

// New builds the clients, the session store and the optional metrics endpoint
func New(cfg *adapter.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	transport := api.NewTransport(cfg.Server.URL, logger)

	sessions, err := store.NewSessionStore(cfg.Cache.Dir, cfg.Server.URL)
	if err != nil {
		logger.Warn("session store unavailable, state will not persist", "error", err)
		sessions, _ = store.NewSessionStore("", cfg.Server.URL)
	}

	a := &App{
		cfg:    cfg,
		logger: logger,
		films: &cachedGenres{
			FilmsRepository: api.NewFilmsClient(transport),
			store:           sessions,
			logger:          logger,
		},
		meta:     api.NewMetaClient(transport),
		store:    sessions,
		launcher: adapter.NewLauncher(transport.BaseURL(), cfg.Browser, logger),
		now:      time.Now,
	}

	if cfg.Metrics.Addr != "" {
		a.metrics = startMetrics(cfg.Metrics.Addr, logger)
	}
	return a, nil
}

// Close releases the store and stops the metrics endpoint
func (a *App) Close() error {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.metrics.Shutdown(ctx)
	}
	return a.store.Close()
}

// Run shows the catalog until the user quits, or prints one page when
// requested or when stdout is not a terminal
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	if opts.Link == "" && opts.Query == "" && opts.Genre == "" {
		if link, ok := a.store.GetLink(); ok {
			a.logger.Info("resuming stored link", "link", link)
			opts.Link = link
		}
	}

	if opts.Print || !term.IsTerminal(int(os.Stdout.Fd())) {
		if opts.Out == nil {
			opts.Out = os.Stdout
		}
		return a.runPrint(ctx, opts)
	}
	return a.runTUI(ctx, opts)
}

func (a *App) runTUI(ctx context.Context, opts RunOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	presenter := tui.NewChannelPresenter(presenterBuffer, a.store, a.logger)
	defer presenter.Close()

	searcher := a.newSearcher(presenter, presenter)
	defer searcher.Wait()

	model := tui.NewModel(tui.Options{
		Ctx:      ctx,
		Searcher: searcher,
		Panels:   a.newPanels(searcher),
		Opener:   a.launcher,
		Messages: presenter.Messages(),
		Start:    a.startup(searcher, opts),
		Clock:    a.now,
		Logger:   a.logger,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)

	a.logger.Info("starting TUI")
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	a.logger.Info("shutting down")
	return nil
}

func (a *App) newSearcher(p service.Presenter, loc service.Location) *service.Searcher {
	return service.NewSearcher(a.films, a.meta, p, loc, service.SearcherOptions{
		Clock:          a.now,
		RecordSearches: a.cfg.History.RecordSearches,
	}, a.logger)
}

// newPanels creates the recent, popular and unique history panels.
// Recent and popular entries refill the form; unique entries open their link.
func (a *App) newPanels(s *service.Searcher) []*service.HistoryPanel {
	opts := service.HistoryPanelOptions{Limit: a.cfg.History.Limit, Clock: a.now}

	applyFilters := func(ctx context.Context, item domain.HistoryItem) error {
		return s.ApplyFilters(ctx, item.Filters())
	}
	openLink := func(ctx context.Context, item domain.HistoryItem) error {
		return s.OpenLink(ctx, service.EncodeHistoryLink(item))
	}

	return []*service.HistoryPanel{
		service.NewHistoryPanel(domain.HistoryRecent, a.meta.Recent, applyFilters, opts, a.logger),
		service.NewHistoryPanel(domain.HistoryPopular, a.meta.Popular, applyFilters, opts, a.logger),
		service.NewHistoryPanel(domain.HistoryUnique, a.meta.Unique, openLink, opts, a.logger),
	}
}

// startup loads genres, then the first listing, then turns to the requested page
func (a *App) startup(s *service.Searcher, opts RunOptions) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		genres, err := s.LoadGenres(ctx)
		if err != nil {
			a.logger.Warn("genres unavailable", "error", err)
		}

		link := opts.Link
		if opts.Query != "" || opts.Genre != "" {
			f := domain.SearchFilters{Query: opts.Query}
			if opts.Genre != "" {
				g, err := api.ResolveGenre(genres, opts.Genre)
				if err != nil {
					return fmt.Errorf("genre %q: %w", opts.Genre, err)
				}
				f.GenreID = g.ID
			}
			link = service.EncodeLink(f)
		}

		if err := s.InitializeFromLink(ctx, link); err != nil {
			return err
		}
		if opts.Page > 1 {
			return s.GoToPage(ctx, opts.Page)
		}
		return nil
	}
}

// cachedGenres serves the genre list from the session store when fresh
type cachedGenres struct {
	domain.FilmsRepository
	store  domain.SessionStore
	logger *slog.Logger
}

func (c *cachedGenres) Genres(ctx context.Context) ([]domain.Genre, error) {
	if genres, ok := c.store.GetGenres(); ok {
		return genres, nil
	}
	genres, err := c.FilmsRepository.Genres(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store.SaveGenres(genres); err != nil {
		c.logger.Warn("failed to cache genres", "error", err)
	}
	return genres, nil
}
