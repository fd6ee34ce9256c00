package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/kinoteka/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeFilms serves movies from memory and records every call
type fakeFilms struct {
	mu      sync.Mutex
	movies  []domain.Movie
	byGenre map[string][]domain.Movie
	calls   []string
	err     error
	hold    map[string]chan struct{} // method -> gate
	started chan string
}

func newFakeFilms(movies ...domain.Movie) *fakeFilms {
	return &fakeFilms{
		movies:  movies,
		byGenre: map[string][]domain.Movie{},
		hold:    map[string]chan struct{}{},
		started: make(chan string, 16),
	}
}

// block makes calls to method wait until the returned func is called
func (f *fakeFilms) block(method string) func() {
	gate := make(chan struct{})
	for drained := false; !drained; {
		select {
		case <-f.started:
		default:
			drained = true
		}
	}
	f.mu.Lock()
	f.hold[method] = gate
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

func (f *fakeFilms) record(ctx context.Context, call string, method string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	gate := f.hold[method]
	err := f.err
	f.mu.Unlock()

	select {
	case f.started <- method:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeFilms) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeFilms) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeFilms) Genres(ctx context.Context) ([]domain.Genre, error) {
	if err := f.record(ctx, "genres", "Genres"); err != nil {
		return nil, err
	}
	return []domain.Genre{{ID: "1", Name: "Action"}, {ID: "2", Name: "Drama"}}, nil
}

func (f *fakeFilms) NewMovies(ctx context.Context, limit, offset int) (domain.Page, error) {
	if err := f.record(ctx, fmt.Sprintf("new limit=%d offset=%d", limit, offset), "NewMovies"); err != nil {
		return domain.Page{}, err
	}
	return f.page(f.movies, limit, offset), nil
}

func (f *fakeFilms) Keyword(ctx context.Context, query string, limit, offset int) (domain.Page, error) {
	if err := f.record(ctx, fmt.Sprintf("keyword %s limit=%d offset=%d", query, limit, offset), "Keyword"); err != nil {
		return domain.Page{}, err
	}
	return f.page(f.movies, limit, offset), nil
}

func (f *fakeFilms) YearRange(ctx context.Context, from, to, genreID string, limit, offset int) (domain.Page, error) {
	if err := f.record(ctx, fmt.Sprintf("year_range %s-%s genre=%s limit=%d offset=%d", from, to, genreID, limit, offset), "YearRange"); err != nil {
		return domain.Page{}, err
	}
	return f.page(f.movies, limit, offset), nil
}

func (f *fakeFilms) ByGenre(ctx context.Context, genreID string, limit, offset int) (domain.Page, error) {
	if err := f.record(ctx, fmt.Sprintf("genre %s limit=%d offset=%d", genreID, limit, offset), "ByGenre"); err != nil {
		return domain.Page{}, err
	}
	return f.page(f.byGenre[genreID], limit, offset), nil
}

func (f *fakeFilms) page(movies []domain.Movie, limit, offset int) domain.Page {
	return domain.Page{Items: paginate(movies, offset, limit), Total: len(movies)}
}

// fakeMeta serves year bounds and history
type fakeMeta struct {
	mu        sync.Mutex
	bounds    domain.YearRange
	boundsErr error
	history   map[domain.HistoryKind][]domain.HistoryItem
	histErr   error
	histCalls int
	saved     []domain.SearchEvent
	saveErr   error
}

func newFakeMeta() *fakeMeta {
	return &fakeMeta{
		bounds:  domain.YearRange{Min: 1920, Max: 2024},
		history: map[domain.HistoryKind][]domain.HistoryItem{},
	}
}

func (m *fakeMeta) History(ctx context.Context, kind domain.HistoryKind, limit int) ([]domain.HistoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histCalls++
	if m.histErr != nil {
		return nil, m.histErr
	}
	items := m.history[kind]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *fakeMeta) YearBounds(ctx context.Context) (domain.YearRange, error) {
	return m.bounds, m.boundsErr
}

func (m *fakeMeta) SaveSearch(ctx context.Context, event domain.SearchEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, event)
	return nil
}

func (m *fakeMeta) HistoryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.histCalls
}

// event is one presenter call
type event struct {
	kind string
	page domain.ResultPage
	form domain.SearchFilters
	err  error
}

// fakePresenter records presenter calls in order
type fakePresenter struct {
	mu      sync.Mutex
	events  []event
	bounds  domain.YearRange
	genres  []domain.Genre
	changed []domain.HistoryKind
}

func (p *fakePresenter) add(e event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *fakePresenter) ShowYearBounds(r domain.YearRange) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bounds = r
}

func (p *fakePresenter) ShowForm(f domain.SearchFilters) { p.add(event{kind: "form", form: f}) }
func (p *fakePresenter) ShowLoading(domain.Mode)         { p.add(event{kind: "loading"}) }
func (p *fakePresenter) ShowResults(r domain.ResultPage) { p.add(event{kind: "results", page: r}) }
func (p *fakePresenter) ShowNoResults(r domain.ResultPage) {
	p.add(event{kind: "empty", page: r})
}
func (p *fakePresenter) ShowError(err error) { p.add(event{kind: "error", err: err}) }

func (p *fakePresenter) ShowGenres(genres []domain.Genre) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.genres = genres
}

func (p *fakePresenter) HistoryChanged(kind domain.HistoryKind) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, kind)
}

// kinds lists recorded event kinds, skipping form updates
func (p *fakePresenter) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		if e.kind != "form" {
			out = append(out, e.kind)
		}
	}
	return out
}

// last returns the newest event of kind
func (p *fakePresenter) last(kind string) (event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].kind == kind {
			return p.events[i], true
		}
	}
	return event{}, false
}

func (p *fakePresenter) count(kind string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}

// fakeLocation records replaced links
type fakeLocation struct {
	mu    sync.Mutex
	links []string
}

func (l *fakeLocation) Replace(link string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.links = append(l.links, link)
}

func (l *fakeLocation) Current() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.links) == 0 {
		return ""
	}
	return l.links[len(l.links)-1]
}

var errBackend = errors.New("backend exploded")

// movies builds n movies titled "Movie i" released in 2000+i
func movies(n int) []domain.Movie {
	out := make([]domain.Movie, n)
	for i := range out {
		out[i] = domain.Movie{ID: fmt.Sprint(i + 1), Title: fmt.Sprintf("Movie %d", i+1), Year: 2000 + i}
	}
	return out
}

type harness struct {
	films     *fakeFilms
	meta      *fakeMeta
	presenter *fakePresenter
	location  *fakeLocation
	clock     *fakeClock
	searcher  *Searcher
}

func newHarness(films *fakeFilms, opts SearcherOptions) *harness {
	h := &harness{
		films:     films,
		meta:      newFakeMeta(),
		presenter: &fakePresenter{},
		location:  &fakeLocation{},
		clock:     newFakeClock(),
	}
	if opts.Clock == nil {
		opts.Clock = h.clock.Now
	}
	h.searcher = NewSearcher(films, h.meta, h.presenter, h.location, opts, testLogger())
	return h
}
