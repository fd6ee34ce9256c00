package service

import (
	"strconv"
	"strings"

	"github.com/mmcdole/kinoteka/internal/domain"
)

// paginate returns the page of items starting at offset
func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) || limit <= 0 {
		return []T{}
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

// filterByYears keeps movies released within the optional inclusive bounds.
// Movies without a known year are kept; bounds that are not numbers are ignored.
func filterByYears(movies []domain.Movie, from, to string) []domain.Movie {
	lo, hasLo := parseYear(from)
	hi, hasHi := parseYear(to)

	out := make([]domain.Movie, 0, len(movies))
	for _, m := range movies {
		if m.Year > 0 {
			if hasLo && m.Year < lo {
				continue
			}
			if hasHi && m.Year > hi {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

func parseYear(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// normalizeFilters trims form values
func normalizeFilters(f domain.SearchFilters) domain.SearchFilters {
	return domain.SearchFilters{
		Query:    strings.TrimSpace(f.Query),
		YearFrom: strings.TrimSpace(f.YearFrom),
		YearTo:   strings.TrimSpace(f.YearTo),
		GenreID:  strings.TrimSpace(f.GenreID),
	}
}
