package api

import (
	"strings"
	"time"

	"github.com/mmcdole/kinoteka/internal/domain"
)

const unknownTitle = "Unknown Title"

// timestamp layouts produced by the metadata service
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// mapMovies converts film DTOs to domain movies
func mapMovies(films []filmDTO) []domain.Movie {
	movies := make([]domain.Movie, 0, len(films))
	for _, f := range films {
		movies = append(movies, mapMovie(f))
	}
	return movies
}

func mapMovie(f filmDTO) domain.Movie {
	m := domain.Movie{
		ID:        string(firstNonEmpty(f.FilmID, f.ID)),
		Title:     strings.TrimSpace(f.Title),
		Year:      firstNonEmpty(f.ReleaseYear, f.Year).Int(),
		PosterURL: f.PosterURL,
		Genres:    []string(f.Genres),
	}
	if m.Title == "" {
		m.Title = unknownTitle
	}
	if m.PosterURL == "" {
		m.PosterURL = f.Poster
	}
	if m.PosterURL == "" {
		m.PosterURL = domain.NoPosterURL
	}
	return m
}

func mapGenres(dtos []genreDTO) []domain.Genre {
	genres := make([]domain.Genre, 0, len(dtos))
	for _, g := range dtos {
		if g.CategoryID == "" {
			continue
		}
		genres = append(genres, domain.Genre{ID: string(g.CategoryID), Name: g.Name})
	}
	return genres
}

func mapHistory(dtos []historyDTO) []domain.HistoryItem {
	items := make([]domain.HistoryItem, 0, len(dtos))
	for _, d := range dtos {
		items = append(items, mapHistoryItem(d))
	}
	return items
}

// mapHistoryItem normalizes both history shapes into one item
func mapHistoryItem(d historyDTO) domain.HistoryItem {
	item := domain.HistoryItem{
		DisplayText: strings.TrimSpace(d.DisplayText),
		Count:       d.Count.Int(),
		Timestamp:   parseTimestamp(firstNonEmptyString(d.Timestamp, d.LatestSearch, d.LatestTimestamp)),
		Kind:        mapKind(d.SearchType),
	}

	if p := d.Params; p != nil {
		item.Query = strings.TrimSpace(p.Query)
		item.YearFrom = string(p.YearFrom)
		item.YearTo = string(p.YearTo)
		item.Genres = []string(p.Genres)
		if p.CategoryID != "" && len(item.Genres) == 0 {
			item.Genres = []string{string(p.CategoryID)}
		}
		if p.Year != "" && item.YearFrom == "" && item.YearTo == "" {
			item.YearFrom = string(p.Year)
			item.YearTo = string(p.Year)
		}
		return item
	}

	// Flat shape. Synthetic queries such as "genre:5" only exist on structured items.
	item.Query = strings.TrimSpace(d.Query)
	item.YearFrom = string(d.YearFrom)
	item.YearTo = string(d.YearTo)
	item.Genres = []string(d.Genres)
	if d.SearchType == "" && item.Query != "" {
		item.Kind = domain.SearchKindKeyword
	}
	return item
}

func mapKind(searchType string) domain.SearchKind {
	switch domain.SearchKind(strings.ToLower(searchType)) {
	case domain.SearchKindKeyword:
		return domain.SearchKindKeyword
	case domain.SearchKindGenre:
		return domain.SearchKindGenre
	case domain.SearchKindYear:
		return domain.SearchKindYear
	case domain.SearchKindManual:
		return domain.SearchKindManual
	default:
		return domain.SearchKindOther
	}
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstNonEmpty(values ...flexString) flexString {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmptyString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
