package service

import (
	"encoding/json"
	"fmt"

	"github.com/mmcdole/kinoteka/internal/domain"
)

// newMoviesKey is the request key of a page of the default listing (new-{page}-{limit})
func newMoviesKey(page, limit int) string {
	return fmt.Sprintf("new-%d-%d", page, limit)
}

// searchKey is the request and cache key of a combined search page.
// Field order is fixed so equal searches always produce equal keys.
func searchKey(f domain.SearchFilters, page, limit int) string {
	data, _ := json.Marshal(struct {
		Query       string `json:"query"`
		YearFrom    string `json:"yearFrom"`
		YearTo      string `json:"yearTo"`
		GenreID     string `json:"genreId"`
		CurrentPage int    `json:"currentPage"`
		Limit       int    `json:"limit"`
	}{f.Query, f.YearFrom, f.YearTo, f.GenreID, page, limit})
	return string(data)
}
