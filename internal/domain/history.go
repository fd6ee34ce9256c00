package domain

import "time"

// SearchKind is how a logged search was issued
type SearchKind string

const (
	SearchKindKeyword SearchKind = "keyword"
	SearchKindGenre   SearchKind = "genre"
	SearchKindYear    SearchKind = "year"
	SearchKindManual  SearchKind = "manual"
	SearchKindOther   SearchKind = "other"
)

// Label returns a short display label for the kind
func (k SearchKind) Label() string {
	switch k {
	case SearchKindKeyword:
		return "Search"
	case SearchKindGenre:
		return "Genre"
	case SearchKindYear:
		return "Year"
	case SearchKindManual:
		return "Manual"
	default:
		return "Other"
	}
}

// HistoryItem is a prior search reported by the metadata service.
// Server shapes differ between endpoints; clients normalize into this type.
type HistoryItem struct {
	Query       string
	Genres      []string // Genre (category) IDs
	YearFrom    string
	YearTo      string
	DisplayText string
	Timestamp   time.Time
	Kind        SearchKind
	Count       int // Number of times searched; 0 when not reported
}

// Filters returns the search form values stored in the item.
// Only the first genre is used, matching the single-genre picker.
func (h HistoryItem) Filters() SearchFilters {
	f := SearchFilters{
		Query:    h.Query,
		YearFrom: h.YearFrom,
		YearTo:   h.YearTo,
	}
	if len(h.Genres) > 0 {
		f.GenreID = h.Genres[0]
	}
	return f
}

// HistoryKind selects a history feed
type HistoryKind int

const (
	HistoryRecent HistoryKind = iota
	HistoryPopular
	HistoryUnique
)

// String returns the feed name
func (k HistoryKind) String() string {
	switch k {
	case HistoryRecent:
		return "recent"
	case HistoryPopular:
		return "popular"
	case HistoryUnique:
		return "unique"
	default:
		return "unknown"
	}
}

// SearchEvent is a search submitted to the metadata service
type SearchEvent struct {
	Query     string
	YearFrom  *int // nil when unset
	YearTo    *int
	Genres    []string
	Timestamp time.Time
}
