package domain

import "context"

// FilmsRepository queries the film catalog
type FilmsRepository interface {
	// Genres returns all genres
	Genres(ctx context.Context) ([]Genre, error)

	// NewMovies returns the default "new movies" listing
	NewMovies(ctx context.Context, limit, offset int) (Page, error)

	// Keyword searches titles; genre is never considered
	Keyword(ctx context.Context, query string, limit, offset int) (Page, error)

	// YearRange returns movies released in [from, to], optionally narrowed by genre
	YearRange(ctx context.Context, from, to, genreID string, limit, offset int) (Page, error)

	// ByGenre returns movies of one genre across all years
	ByGenre(ctx context.Context, genreID string, limit, offset int) (Page, error)
}

// MetaRepository reads and writes search history telemetry
type MetaRepository interface {
	// History returns the feed of prior searches
	History(ctx context.Context, kind HistoryKind, limit int) ([]HistoryItem, error)

	// YearBounds returns the release year range of the catalog
	YearBounds(ctx context.Context) (YearRange, error)

	// SaveSearch records a search event
	SaveSearch(ctx context.Context, event SearchEvent) error
}

// SessionStore persists client state between runs
type SessionStore interface {
	// GetLink returns the link of the last search
	GetLink() (string, bool)

	// SaveLink stores the link of the current search; "" clears it
	SaveLink(link string) error

	// GetGenres returns the cached genre list
	GetGenres() ([]Genre, bool)

	// SaveGenres caches the genre list
	SaveGenres(genres []Genre) error

	Close() error
}
