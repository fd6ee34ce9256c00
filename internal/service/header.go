package service

import (
	"fmt"
	"strings"

	"github.com/mmcdole/kinoteka/internal/domain"
)

const headerTitle = "Search results"

// DescribeSearch builds the results header for the applied filters.
// genreName is used for the genre label; an empty name falls back to "Genre".
func DescribeSearch(f domain.SearchFilters, genreName string) string {
	var parts []string

	if f.Query != "" {
		parts = append(parts, fmt.Sprintf("Search: %q", f.Query))
	}

	if f.GenreID != "" && f.Query == "" {
		if genreName == "" {
			genreName = "Genre"
		}
		parts = append(parts, "Genre: "+genreName)
	}

	switch {
	case f.YearFrom != "" && f.YearTo != "":
		parts = append(parts, fmt.Sprintf("Years: %s–%s", f.YearFrom, f.YearTo))
	case f.YearFrom != "":
		parts = append(parts, "Year from: "+f.YearFrom)
	case f.YearTo != "":
		parts = append(parts, "Year to: "+f.YearTo)
	}

	if len(parts) == 0 {
		return headerTitle
	}
	return headerTitle + " • " + strings.Join(parts, " • ")
}
