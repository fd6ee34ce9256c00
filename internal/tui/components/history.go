package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/mmcdole/kinoteka/internal/domain"
	"github.com/mmcdole/kinoteka/internal/service"
	"github.com/mmcdole/kinoteka/internal/tui/styles"
)

// PanelWidth is the outer width of a history panel
const PanelWidth = 46

// Rect is a screen region in cells
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside r
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// TabLabel returns the trigger label of a history feed
func TabLabel(kind domain.HistoryKind) string {
	switch kind {
	case domain.HistoryRecent:
		return "Recent"
	case domain.HistoryPopular:
		return "Popular"
	case domain.HistoryUnique:
		return "Unique"
	default:
		return kind.String()
	}
}

// TabRects lays out one trigger tab per kind on row y starting at column x
func TabRects(kinds []domain.HistoryKind, x, y int) []Rect {
	rects := make([]Rect, len(kinds))
	for i, kind := range kinds {
		w := lipgloss.Width(styles.TabStyle.Render(TabLabel(kind)))
		rects[i] = Rect{X: x, Y: y, W: w, H: 1}
		x += w + 1
	}
	return rects
}

// RenderTabs draws the trigger tabs; active tabs are highlighted
func RenderTabs(kinds []domain.HistoryKind, active func(domain.HistoryKind) bool) string {
	tabs := make([]string, len(kinds))
	for i, kind := range kinds {
		style := styles.TabStyle
		if active != nil && active(kind) {
			style = styles.ActiveTabStyle
		}
		tabs[i] = style.Render(TabLabel(kind))
	}
	return strings.Join(tabs, " ")
}

// PanelRects places rendered panels below their tabs, left to right without overlap
func PanelRects(tabs []Rect, panels []string) []Rect {
	rects := make([]Rect, len(panels))
	minX := 0
	for i, panel := range panels {
		if panel == "" {
			continue
		}
		x := tabs[i].X
		if x < minX {
			x = minX
		}
		rects[i] = Rect{X: x, Y: tabs[i].Y + 1, W: lipgloss.Width(panel), H: lipgloss.Height(panel)}
		minX = x + rects[i].W
	}
	return rects
}

// PlacePanels draws panels at rects on a block of the given width
func PlacePanels(panels []string, rects []Rect) string {
	var blocks []string
	col := 0
	for i, panel := range panels {
		if panel == "" {
			continue
		}
		if gap := rects[i].X - col; gap > 0 {
			blocks = append(blocks, strings.Repeat(" ", gap))
		}
		blocks = append(blocks, panel)
		col = rects[i].X + rects[i].W
	}
	if len(blocks) == 0 {
		return ""
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

// RenderHistoryPanel draws a panel snapshot, or "" when hidden.
// cursor is the highlighted entry, or -1.
func RenderHistoryPanel(v service.PanelView, cursor int, describe func(domain.HistoryItem) string, now time.Time) string {
	if v.State == service.PanelHidden {
		return ""
	}
	inner := PanelWidth - 4

	var b strings.Builder
	b.WriteString(styles.PanelTitleStyle.Render(TabLabel(v.Kind) + " searches"))

	switch v.State {
	case service.PanelLoading:
		b.WriteString("\n" + styles.DimStyle.Render("Loading..."))
	case service.PanelFailed:
		b.WriteString("\n" + styles.ErrorStyle.Render("Could not load history"))
		b.WriteString("\n" + styles.DimStyle.Render("Press R to retry"))
	case service.PanelShown:
		if len(v.Items) == 0 {
			b.WriteString("\n" + styles.DimStyle.Render("No searches yet"))
		}
		for i, item := range v.Items {
			b.WriteString("\n")
			b.WriteString(renderHistoryItem(v.Kind, item, i == cursor, describe, now, inner))
		}
	}

	return styles.PanelStyle.Width(PanelWidth - 2).Render(b.String())
}

func renderHistoryItem(kind domain.HistoryKind, item domain.HistoryItem, selected bool, describe func(domain.HistoryItem) string, now time.Time, width int) string {
	text := describe(item)
	meta := HistoryMeta(kind, item, now)

	line := styles.Truncate(text, width)
	if selected {
		line = styles.SelectedItemStyle.Render(line)
	} else {
		line = styles.NormalItemStyle.Render(line)
	}
	if meta != "" {
		line += "\n" + styles.DimStyle.Render("  "+meta)
	}
	return line
}

// HistoryMeta returns the secondary line of an entry: the search kind,
// how long ago it ran and, for popular searches, how often.
func HistoryMeta(kind domain.HistoryKind, item domain.HistoryItem, now time.Time) string {
	var parts []string
	if label := item.Kind.Label(); label != "" {
		parts = append(parts, label)
	}
	if !item.Timestamp.IsZero() {
		parts = append(parts, humanize.RelTime(item.Timestamp, now, "ago", "from now"))
	}
	if kind == domain.HistoryPopular && item.Count > 0 {
		parts = append(parts, english.Plural(item.Count, "search", "searches"))
	}
	return strings.Join(parts, " · ")
}
