package api

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/kinoteka/internal/domain"
)

// ResolveGenre finds a genre by ID or by name.
// Exact ID and case-insensitive name matches win; otherwise the closest
// fuzzy name match is returned.
func ResolveGenre(genres []domain.Genre, nameOrID string) (domain.Genre, error) {
	needle := strings.TrimSpace(nameOrID)
	if needle == "" {
		return domain.Genre{}, domain.ErrGenreNotFound
	}

	for _, g := range genres {
		if g.ID == needle || strings.EqualFold(g.Name, needle) {
			return g, nil
		}
	}

	names := make([]string, len(genres))
	for i, g := range genres {
		names[i] = g.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(needle, names)
	if len(ranks) == 0 {
		return domain.Genre{}, fmt.Errorf("%w: %q", domain.ErrGenreNotFound, nameOrID)
	}
	sort.Sort(ranks)
	return genres[ranks[0].OriginalIndex], nil
}
