package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/kinoteka/internal/domain"
)

const (
	// keywordFetchLimit is the result cap of a keyword search; year filtering
	// and pagination of keyword results happen locally
	keywordFetchLimit = 1000

	// saveTimeout bounds the optional search event write
	saveTimeout = 5 * time.Second
)

// Presenter receives view updates from the Searcher.
// Calls are made while the Searcher holds its state lock, so they arrive in
// the order the state changed and must not call back into the Searcher.
type Presenter interface {
	ShowYearBounds(r domain.YearRange)
	ShowForm(f domain.SearchFilters)
	ShowLoading(mode domain.Mode)
	ShowResults(p domain.ResultPage)
	ShowNoResults(p domain.ResultPage)
	ShowError(err error)
	ShowGenres(genres []domain.Genre)
	HistoryChanged(kind domain.HistoryKind)
}

// Location holds the shareable link of the current search
type Location interface {
	Replace(link string)
}

// SearcherOptions tunes a Searcher
type SearcherOptions struct {
	Cache          *ResultCache     // nil creates a default cache
	Clock          func() time.Time // nil uses time.Now
	RecordSearches bool             // post successful keyword searches to the metadata service
}

// request is the single in-flight backend call
type request struct {
	key    string
	token  uint64
	ctx    context.Context
	cancel context.CancelFunc
	page   int
}

// Searcher owns the search form state, pagination, the result cache and the
// in-flight request. Methods block until their request completes and may be
// called from several goroutines.
type Searcher struct {
	films     domain.FilmsRepository
	meta      domain.MetaRepository
	presenter Presenter
	location  Location
	cache     *ResultCache
	logger    *slog.Logger
	now       func() time.Time
	record    bool

	mu       sync.Mutex
	form     domain.SearchFilters // last values read from the form
	applied  domain.SearchFilters // filters of the listing on screen
	state    domain.PageState
	bounds   domain.YearRange
	genres   []domain.Genre
	inflight *request
	seq      uint64
	last     func(ctx context.Context) error
	saves    sync.WaitGroup
}

// NewSearcher creates a searcher presenting through p and writing links to loc
func NewSearcher(films domain.FilmsRepository, meta domain.MetaRepository, p Presenter, loc Location, opts SearcherOptions, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Cache == nil {
		opts.Cache = NewResultCache(ResultCacheSize, ResultCacheTTL, opts.Clock)
	}
	return &Searcher{
		films:     films,
		meta:      meta,
		presenter: p,
		location:  loc,
		cache:     opts.Cache,
		logger:    logger,
		now:       opts.Clock,
		record:    opts.RecordSearches,
		state: domain.PageState{
			CurrentPage: 1,
			Limit:       domain.DefaultPageLimit,
			Mode:        domain.ModeNew,
		},
	}
}

// State returns a snapshot of pagination
func (s *Searcher) State() domain.PageState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Filters returns the filters of the listing on screen
func (s *Searcher) Filters() domain.SearchFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

// Busy reports whether a request is in flight
func (s *Searcher) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight != nil
}

// InitializeFromLink loads year bounds and then either runs the search
// encoded in link or loads the new movies listing
func (s *Searcher) InitializeFromLink(ctx context.Context, link string) error {
	bounds, err := s.meta.YearBounds(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("year bounds unavailable, using defaults", "error", err)
		bounds = domain.YearRange{Min: 1900, Max: s.now().Year()}
	}

	params, err := ParseLink(link)
	if err != nil {
		s.logger.Warn("ignoring malformed link", "link", link, "error", err)
		params = LinkParams{}
	}

	s.mu.Lock()
	s.bounds = bounds
	s.presenter.ShowYearBounds(bounds)
	s.state.CurrentPage = 1
	if params.Empty() {
		s.mu.Unlock()
		return s.LoadNewMovies(ctx)
	}
	form := params.Filters()
	s.form = form
	s.presenter.ShowForm(form)
	s.mu.Unlock()

	return s.PerformCombinedSearch(ctx, form)
}

// OpenLink resets to page 1 and applies link as if the program had been started with it
func (s *Searcher) OpenLink(ctx context.Context, link string) error {
	return s.InitializeFromLink(ctx, link)
}

// YearBounds returns the bounds loaded at initialization
func (s *Searcher) YearBounds() domain.YearRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds
}

// Search starts a new search from page 1
func (s *Searcher) Search(ctx context.Context, form domain.SearchFilters) error {
	s.mu.Lock()
	s.state.CurrentPage = 1
	s.mu.Unlock()
	return s.PerformCombinedSearch(ctx, form)
}

// ApplyFilters puts f into the search form and searches from page 1
func (s *Searcher) ApplyFilters(ctx context.Context, f domain.SearchFilters) error {
	f = normalizeFilters(f)
	s.mu.Lock()
	s.form = f
	s.presenter.ShowForm(f)
	s.mu.Unlock()
	return s.Search(ctx, f)
}

// Form returns the last search form values
func (s *Searcher) Form() domain.SearchFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// PerformCombinedSearch runs the search described by form for the current page.
// Without any active filter the new movies listing is shown instead.
func (s *Searcher) PerformCombinedSearch(ctx context.Context, form domain.SearchFilters) error {
	filters := normalizeFilters(form)

	s.mu.Lock()
	s.form = filters
	s.mu.Unlock()

	if !filters.Active() {
		return s.ResetToNewMovies(ctx)
	}
	return s.combinedSearch(ctx, filters)
}

func (s *Searcher) combinedSearch(ctx context.Context, filters domain.SearchFilters) error {
	req := s.beginSearch(ctx, filters)
	if req == nil {
		return nil
	}
	page, err := s.fetchSearch(req.ctx, filters, req.page)
	return s.applySearch(req, filters, page, err)
}

// beginSearch serves a cache hit or registers a new request.
// A nil request means there is nothing to fetch.
func (s *Searcher) beginSearch(ctx context.Context, filters domain.SearchFilters) *request {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = func(ctx context.Context) error { return s.combinedSearch(ctx, filters) }
	s.state.Mode = domain.ModeSearch
	key := searchKey(filters, s.state.CurrentPage, s.state.Limit)

	if entry, ok := s.cache.Get(key); ok {
		// Cancel the in-flight request so its late response cannot overwrite the cached page
		s.abandonLocked()
		s.applied = filters
		s.state.CurrentTotal = entry.Total
		s.presentLocked(filters, entry.Items, entry.Total)
		s.location.Replace(EncodeLink(filters))
		return nil
	}

	if s.inflight != nil && s.inflight.key == key {
		s.logger.Debug("request already in flight", "key", key)
		return nil
	}

	req := s.beginLocked(ctx, key)
	s.presenter.ShowLoading(domain.ModeSearch)
	return req
}

// fetchSearch issues the single backend call chosen by filter precedence
func (s *Searcher) fetchSearch(ctx context.Context, f domain.SearchFilters, page int) (domain.Page, error) {
	limit := domain.DefaultPageLimit
	offset := (page - 1) * limit

	switch {
	case f.Query != "":
		all, err := s.films.Keyword(ctx, f.Query, keywordFetchLimit, 0)
		if err != nil {
			return domain.Page{}, err
		}
		filtered := filterByYears(all.Items, f.YearFrom, f.YearTo)
		return domain.Page{Items: paginate(filtered, offset, limit), Total: len(filtered)}, nil
	case f.YearFrom != "" && f.YearTo != "":
		return s.films.YearRange(ctx, f.YearFrom, f.YearTo, f.GenreID, limit, offset)
	case f.GenreID != "":
		return s.films.ByGenre(ctx, f.GenreID, limit, offset)
	default:
		return domain.Page{}, nil
	}
}

func (s *Searcher) applySearch(req *request, filters domain.SearchFilters, page domain.Page, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.finishLocked(req) {
		return nil
	}
	if err != nil {
		return s.failLocked("search", err)
	}

	s.applied = filters
	s.state.CurrentTotal = page.Total
	if len(page.Items) == 0 {
		s.presenter.ShowNoResults(s.resultPageLocked(filters, nil, page.Total))
		return nil
	}

	s.presentLocked(filters, page.Items, page.Total)
	s.location.Replace(EncodeLink(filters))
	s.cache.Set(req.key, page.Items, page.Total)

	if s.record && filters.Query != "" {
		s.saveSearch(filters)
	}
	return nil
}

// LoadNewMovies shows the current page of the default listing
func (s *Searcher) LoadNewMovies(ctx context.Context) error {
	req := s.beginNewMovies(ctx)
	if req == nil {
		return nil
	}
	page, err := s.films.NewMovies(req.ctx, domain.DefaultPageLimit, (req.page-1)*domain.DefaultPageLimit)
	return s.applyNewMovies(req, page, err)
}

func (s *Searcher) beginNewMovies(ctx context.Context) *request {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = s.LoadNewMovies
	s.state.Mode = domain.ModeNew
	key := newMoviesKey(s.state.CurrentPage, s.state.Limit)

	if s.inflight != nil && s.inflight.key == key {
		s.logger.Debug("request already in flight", "key", key)
		return nil
	}

	req := s.beginLocked(ctx, key)
	s.presenter.ShowLoading(domain.ModeNew)
	return req
}

func (s *Searcher) applyNewMovies(req *request, page domain.Page, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.finishLocked(req) {
		return nil
	}
	if err != nil {
		return s.failLocked("new movies", err)
	}

	s.state.CurrentTotal = page.Total
	result := domain.ResultPage{
		Items: page.Items,
		Total: page.Total,
		Page:  s.state.CurrentPage,
		Limit: s.state.Limit,
		Mode:  domain.ModeNew,
	}
	if len(page.Items) == 0 {
		s.presenter.ShowNoResults(result)
		return nil
	}
	s.presenter.ShowResults(result)
	return nil
}

// PreviousPage moves one page back. It does nothing on the first page or
// while a request is in flight.
func (s *Searcher) PreviousPage(ctx context.Context) error {
	return s.turnPage(ctx, -1)
}

// NextPage moves one page forward. It does nothing on the last page or
// while a request is in flight.
func (s *Searcher) NextPage(ctx context.Context) error {
	return s.turnPage(ctx, 1)
}

// GoToPage jumps to page n of the current listing when it exists
func (s *Searcher) GoToPage(ctx context.Context, n int) error {
	s.mu.Lock()
	current := s.state.CurrentPage
	s.mu.Unlock()
	return s.turnPage(ctx, n-current)
}

func (s *Searcher) turnPage(ctx context.Context, delta int) error {
	s.mu.Lock()
	if delta == 0 || s.inflight != nil {
		s.mu.Unlock()
		return nil
	}
	target := s.state.CurrentPage + delta
	if target < 1 || (delta > 0 && target > s.state.TotalPages()) {
		s.mu.Unlock()
		return nil
	}
	s.state.CurrentPage = target
	mode := s.state.Mode
	filters := s.applied
	s.mu.Unlock()

	if mode == domain.ModeSearch && filters.Active() {
		return s.combinedSearch(ctx, filters)
	}
	return s.LoadNewMovies(ctx)
}

// ResetAllFilters clears the form, the filters and the link and shows the first page of new movies
func (s *Searcher) ResetAllFilters(ctx context.Context) error {
	s.mu.Lock()
	s.form = domain.SearchFilters{}
	s.presenter.ShowForm(s.form)
	s.mu.Unlock()
	return s.ResetToNewMovies(ctx)
}

// ResetToNewMovies clears the filters and the link and shows the first page of new movies
func (s *Searcher) ResetToNewMovies(ctx context.Context) error {
	s.mu.Lock()
	s.applied = domain.SearchFilters{}
	s.state.CurrentPage = 1
	s.location.Replace("")
	s.mu.Unlock()
	return s.LoadNewMovies(ctx)
}

// Retry re-runs the last listing operation
func (s *Searcher) Retry(ctx context.Context) error {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last == nil {
		return s.LoadNewMovies(ctx)
	}
	return last(ctx)
}

// LoadGenres fetches the genre list and presents it
func (s *Searcher) LoadGenres(ctx context.Context) ([]domain.Genre, error) {
	genres, err := s.films.Genres(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Error("failed to load genres", "error", err)
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.genres = genres
	s.presenter.ShowGenres(genres)
	return genres, nil
}

// Wait blocks until pending search event writes finish
func (s *Searcher) Wait() {
	s.saves.Wait()
}

func (s *Searcher) genreNameLocked(id string) string {
	for _, g := range s.genres {
		if g.ID == id {
			return g.Name
		}
	}
	return ""
}

// beginLocked cancels any in-flight request and registers a new one
func (s *Searcher) beginLocked(ctx context.Context, key string) *request {
	s.abandonLocked()
	s.seq++
	rctx, cancel := context.WithCancel(ctx)
	req := &request{
		key:    key,
		token:  s.seq,
		ctx:    rctx,
		cancel: cancel,
		page:   s.state.CurrentPage,
	}
	s.inflight = req
	return req
}

func (s *Searcher) abandonLocked() {
	if s.inflight != nil {
		s.inflight.cancel()
		s.inflight = nil
	}
}

// finishLocked releases req and reports whether its result may be applied
func (s *Searcher) finishLocked(req *request) bool {
	req.cancel()
	if s.inflight == nil || s.inflight.token != req.token {
		return false
	}
	s.inflight = nil
	return true
}

func (s *Searcher) failLocked(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Error("listing failed", "op", op, "error", err)
	s.presenter.ShowError(err)
	return err
}

func (s *Searcher) presentLocked(filters domain.SearchFilters, items []domain.Movie, total int) {
	s.presenter.ShowResults(s.resultPageLocked(filters, items, total))
}

func (s *Searcher) resultPageLocked(filters domain.SearchFilters, items []domain.Movie, total int) domain.ResultPage {
	return domain.ResultPage{
		Items:   items,
		Total:   total,
		Page:    s.state.CurrentPage,
		Limit:   s.state.Limit,
		Mode:    domain.ModeSearch,
		Filters: filters,
		Header:  DescribeSearch(filters, s.genreNameLocked(filters.GenreID)),
	}
}

// saveSearch posts the search event in the background; failures are only logged
func (s *Searcher) saveSearch(f domain.SearchFilters) {
	event := domain.SearchEvent{
		Query:     f.Query,
		Timestamp: s.now(),
	}
	if y, ok := parseYear(f.YearFrom); ok {
		event.YearFrom = &y
	}
	if y, ok := parseYear(f.YearTo); ok {
		event.YearTo = &y
	}
	if f.GenreID != "" {
		event.Genres = []string{f.GenreID}
	}

	s.saves.Add(1)
	go func() {
		defer s.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		if err := s.meta.SaveSearch(ctx, event); err != nil {
			s.logger.Warn("failed to record search", "query", event.Query, "error", err)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		s.presenter.HistoryChanged(domain.HistoryRecent)
		s.presenter.HistoryChanged(domain.HistoryPopular)
	}()
}
