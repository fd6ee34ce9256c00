package components

import (
	"fmt"

	"github.com/mmcdole/kinoteka/internal/domain"
	"github.com/mmcdole/kinoteka/internal/tui/styles"
)

// PaginationView is the computed state of the pagination controls
type PaginationView struct {
	Visible bool
	HasPrev bool
	HasNext bool
	Page    int
	Pages   int
	Label   string // "Page X of Y"
}

// Pagination computes the controls for total results shown limit per page.
// Controls are hidden when everything fits on one page.
func Pagination(total, page, limit int) PaginationView {
	pages := domain.TotalPages(total, limit)
	if total == 0 || pages <= 1 {
		return PaginationView{Page: page, Pages: pages}
	}
	return PaginationView{
		Visible: true,
		HasPrev: page > 1,
		HasNext: page < pages,
		Page:    page,
		Pages:   pages,
		Label:   fmt.Sprintf("Page %d of %d", page, pages),
	}
}

// RenderPagination draws the controls, or "" when hidden
func RenderPagination(p PaginationView) string {
	if !p.Visible {
		return ""
	}
	prev := styles.DimStyle.Render("‹ prev")
	if p.HasPrev {
		prev = styles.AccentStyle.Render("‹ prev")
	}
	next := styles.DimStyle.Render("next ›")
	if p.HasNext {
		next = styles.AccentStyle.Render("next ›")
	}
	return prev + "  " + styles.SubtitleStyle.Render(p.Label) + "  " + next
}
