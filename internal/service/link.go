package service

import (
	"net/url"
	"strings"

	"github.com/mmcdole/kinoteka/internal/domain"
)

// Link query parameters
const (
	linkQuery  = "q"
	linkFrom   = "from"
	linkTo     = "to"
	linkGenres = "genres"
)

// LinkParams are the values carried by a link. Genres may list several
// IDs; only the first one drives a search.
type LinkParams struct {
	Query    string
	YearFrom string
	YearTo   string
	Genres   []string
}

// Empty reports whether no recognized parameter is present
func (p LinkParams) Empty() bool {
	return p.Query == "" && p.YearFrom == "" && p.YearTo == "" && len(p.Genres) == 0
}

// Filters converts the link into form values. The genre is dropped when a
// query is present since keyword search spans every genre.
func (p LinkParams) Filters() domain.SearchFilters {
	f := domain.SearchFilters{
		Query:    p.Query,
		YearFrom: p.YearFrom,
		YearTo:   p.YearTo,
	}
	if f.Query == "" && len(p.Genres) > 0 {
		f.GenreID = p.Genres[0]
	}
	return f
}

// EncodeLink serializes filters into a link query string without the leading "?".
// The genre is omitted when a query is set.
func EncodeLink(f domain.SearchFilters) string {
	v := url.Values{}
	if f.Query != "" {
		v.Set(linkQuery, f.Query)
	}
	if f.YearFrom != "" {
		v.Set(linkFrom, f.YearFrom)
	}
	if f.YearTo != "" {
		v.Set(linkTo, f.YearTo)
	}
	if f.GenreID != "" && f.Query == "" {
		v.Set(linkGenres, f.GenreID)
	}
	return v.Encode()
}

// EncodeHistoryLink serializes a history item into a link, keeping every genre
func EncodeHistoryLink(item domain.HistoryItem) string {
	v := url.Values{}
	if item.Query != "" {
		v.Set(linkQuery, item.Query)
	}
	if item.YearFrom != "" {
		v.Set(linkFrom, item.YearFrom)
	}
	if item.YearTo != "" {
		v.Set(linkTo, item.YearTo)
	}
	if len(item.Genres) > 0 {
		v.Set(linkGenres, strings.Join(item.Genres, ","))
	}
	return v.Encode()
}

// ParseLink reads link parameters from a bare query string, a string with a
// leading "?" or a full URL. Unknown parameters are ignored.
func ParseLink(raw string) (LinkParams, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return LinkParams{}, nil
	}

	query := raw
	if i := strings.Index(raw, "?"); i >= 0 {
		query = raw[i+1:]
	} else if strings.Contains(raw, "://") {
		// URL without a query string
		return LinkParams{}, nil
	}
	if i := strings.Index(query, "#"); i >= 0 {
		query = query[:i]
	}

	v, err := url.ParseQuery(query)
	if err != nil {
		return LinkParams{}, err
	}

	p := LinkParams{
		Query:    strings.TrimSpace(v.Get(linkQuery)),
		YearFrom: strings.TrimSpace(v.Get(linkFrom)),
		YearTo:   strings.TrimSpace(v.Get(linkTo)),
	}
	for _, g := range strings.Split(v.Get(linkGenres), ",") {
		if g = strings.TrimSpace(g); g != "" {
			p.Genres = append(p.Genres, g)
		}
	}
	return p, nil
}
