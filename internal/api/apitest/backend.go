// Package apitest provides an in-process catalog backend for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Film is a catalog entry served by the fake backend
type Film struct {
	ID       int
	Title    string
	Year     int
	GenreIDs []string
	Genres   []string
	Poster   string
}

// Genre is a category served by /films/genres
type Genre struct {
	ID   int
	Name string
}

// Backend is a fake catalog server.
// Exported fields must be set before the first request.
type Backend struct {
	Films   []Film
	Genres  []Genre
	MinYear int
	MaxYear int

	// History feeds keyed by "recent", "popular" and "unique"; items are sent verbatim
	History map[string][]map[string]any

	mu       sync.Mutex
	hits     map[string]int
	queries  []string
	failures map[string]int
	gate     chan struct{}
	saved    []map[string]any
	ids      []string

	server *httptest.Server
}

// New starts a backend with the given films and registers cleanup on t
func New(t testing.TB, films []Film, genres []Genre) *Backend {
	t.Helper()
	b := &Backend{
		Films:    films,
		Genres:   genres,
		MinYear:  1900,
		MaxYear:  2025,
		History:  map[string][]map[string]any{},
		hits:     map[string]int{},
		failures: map[string]int{},
	}
	b.server = httptest.NewServer(b.routes())
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the server root
func (b *Backend) URL() string {
	return b.server.URL
}

// Hits returns how many requests reached path
func (b *Backend) Hits(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

// TotalHits returns the number of requests served
func (b *Backend) TotalHits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, h := range b.hits {
		n += h
	}
	return n
}

// Queries returns the raw query strings received, in order, as "path?query"
func (b *Backend) Queries() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.queries...)
}

// RequestIDs returns every X-Request-ID header received
func (b *Backend) RequestIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.ids...)
}

// Saved returns the bodies posted to /meta/search
func (b *Backend) Saved() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]any(nil), b.saved...)
}

// Fail makes every request to path answer with status until cleared with 0
func (b *Backend) Fail(path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.failures, path)
		return
	}
	b.failures[path] = status
}

// Hold blocks /films requests until Release is called or the client gives up
func (b *Backend) Hold() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gate = make(chan struct{})
}

// Release unblocks held requests
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gate != nil {
		close(b.gate)
		b.gate = nil
	}
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.track)

	r.Route("/films", func(r chi.Router) {
		r.Use(b.held)
		r.Get("/genres", b.handleGenres)
		r.Get("/search/new", b.handleNew)
		r.Get("/search/keyword", b.handleKeyword)
		r.Get("/search/year_range", b.handleYearRange)
		r.Get("/search/genres", b.handleByGenre)
	})

	r.Route("/meta", func(r chi.Router) {
		r.Get("/year-range", b.handleYearBounds)
		r.Get("/{feed}", b.handleHistory)
		r.Post("/search", b.handleSave)
	})

	return r
}

// track counts requests and applies injected failures
func (b *Backend) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[r.URL.Path]++
		b.queries = append(b.queries, r.URL.Path+"?"+r.URL.RawQuery)
		b.ids = append(b.ids, r.Header.Get("X-Request-ID"))
		status := b.failures[r.URL.Path]
		b.mu.Unlock()

		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) held(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		gate := b.gate
		b.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleGenres(w http.ResponseWriter, r *http.Request) {
	items := make([]map[string]any, 0, len(b.Genres))
	for _, g := range b.Genres {
		items = append(items, map[string]any{"category_id": g.ID, "name": g.Name})
	}
	writeJSON(w, map[string]any{"items": items, "count": len(items)})
}

func (b *Backend) handleNew(w http.ResponseWriter, r *http.Request) {
	b.writePage(w, r, b.Films)
}

func (b *Backend) handleKeyword(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("query"))
	var out []Film
	for _, f := range b.Films {
		if strings.Contains(strings.ToLower(f.Title), q) {
			out = append(out, f)
		}
	}
	b.writePage(w, r, out)
}

func (b *Backend) handleYearRange(w http.ResponseWriter, r *http.Request) {
	from, errFrom := strconv.Atoi(r.URL.Query().Get("year_from"))
	to, errTo := strconv.Atoi(r.URL.Query().Get("year_to"))
	if errFrom != nil || errTo != nil {
		http.Error(w, "year_from and year_to are required", http.StatusUnprocessableEntity)
		return
	}
	genre := r.URL.Query().Get("category_id")
	var out []Film
	for _, f := range b.Films {
		if f.Year < from || f.Year > to {
			continue
		}
		if genre != "" && !hasGenre(f, genre) {
			continue
		}
		out = append(out, f)
	}
	b.writePage(w, r, out)
}

func (b *Backend) handleByGenre(w http.ResponseWriter, r *http.Request) {
	genre := r.URL.Query().Get("category_id")
	if genre == "" {
		http.Error(w, "category_id is required", http.StatusUnprocessableEntity)
		return
	}
	var out []Film
	for _, f := range b.Films {
		if hasGenre(f, genre) {
			out = append(out, f)
		}
	}
	b.writePage(w, r, out)
}

func (b *Backend) handleYearBounds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"min_year": b.MinYear, "max_year": b.MaxYear})
}

func (b *Backend) handleHistory(w http.ResponseWriter, r *http.Request) {
	feed := chi.URLParam(r, "feed")
	items, ok := b.History[feed]
	if !ok {
		http.NotFound(w, r)
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err == nil && limit < len(items) {
		items = items[:limit]
	}
	writeJSON(w, map[string]any{"items": items, "count": len(items)})
}

func (b *Backend) handleSave(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	b.saved = append(b.saved, body)
	b.mu.Unlock()
	writeJSON(w, map[string]any{"status": "ok", "query": body})
}

func (b *Backend) writePage(w http.ResponseWriter, r *http.Request, films []Film) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	total := len(films)
	start := min(max(offset, 0), total)
	end := min(start+limit, total)

	items := make([]map[string]any, 0, end-start)
	for _, f := range films[start:end] {
		item := map[string]any{
			"film_id":      f.ID,
			"title":        f.Title,
			"release_year": f.Year,
			"genres":       strings.Join(f.Genres, ", "),
		}
		if f.Poster != "" {
			item["poster_url"] = f.Poster
		}
		items = append(items, item)
	}

	writeJSON(w, map[string]any{
		"items":  items,
		"total":  total,
		"offset": offset,
		"limit":  limit,
	})
}

func hasGenre(f Film, id string) bool {
	for _, g := range f.GenreIDs {
		if g == id {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
