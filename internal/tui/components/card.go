package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/kinoteka/internal/domain"
	"github.com/mmcdole/kinoteka/internal/tui/styles"
)

// MovieCard renders one movie as a bordered card
func MovieCard(m domain.Movie, selected bool) string {
	inner := styles.CardWidth - 2

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(styles.Truncate(m.Title, inner)))
	b.WriteString("\n")
	b.WriteString(styles.AccentStyle.Render(m.YearLabel()))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render(styles.Truncate(m.GenreLabel(), inner)))
	b.WriteString("\n")
	if m.HasPoster() {
		b.WriteString(styles.DimStyle.Render("▣ poster"))
	} else {
		b.WriteString(styles.DimStyle.Render("□ no poster"))
	}
	b.WriteString("\n")
	b.WriteString(styles.LinkStyle.Render(styles.Truncate(m.DetailPath(), inner)))

	style := styles.CardStyle
	if selected {
		style = styles.CardSelectedStyle
	}
	return style.Render(b.String())
}

// MovieLine renders one movie as plain text for non-interactive output
func MovieLine(m domain.Movie, baseURL string) string {
	parts := []string{m.Title + " (" + m.YearLabel() + ")"}
	if g := m.GenreLabel(); g != "" {
		parts = append(parts, g)
	}
	parts = append(parts, baseURL+m.DetailPath())
	return strings.Join(parts, " · ")
}

// MovieGrid lays out movie cards in rows and tracks a selected card
type MovieGrid struct {
	movies []domain.Movie
	cursor int
	width  int
}

// NewMovieGrid creates an empty grid
func NewMovieGrid() MovieGrid {
	return MovieGrid{}
}

// SetMovies replaces the grid contents and selects the first card
func (g *MovieGrid) SetMovies(movies []domain.Movie) {
	g.movies = movies
	g.cursor = 0
}

// SetWidth sets the available width
func (g *MovieGrid) SetWidth(width int) {
	g.width = width
}

// Columns returns how many cards fit on a row
func (g MovieGrid) Columns() int {
	cols := g.width / (styles.CardWidth + 2)
	if cols < 1 {
		return 1
	}
	return cols
}

// Move shifts the selection by dx cards and dy rows, clamped to the grid
func (g *MovieGrid) Move(dx, dy int) {
	if len(g.movies) == 0 {
		return
	}
	next := g.cursor + dx + dy*g.Columns()
	if next < 0 {
		next = 0
	}
	if next >= len(g.movies) {
		next = len(g.movies) - 1
	}
	g.cursor = next
}

// Selected returns the selected movie
func (g MovieGrid) Selected() (domain.Movie, bool) {
	if g.cursor < 0 || g.cursor >= len(g.movies) {
		return domain.Movie{}, false
	}
	return g.movies[g.cursor], true
}

// Cursor returns the selected index
func (g MovieGrid) Cursor() int {
	return g.cursor
}

// View renders the grid
func (g MovieGrid) View() string {
	if len(g.movies) == 0 {
		return ""
	}
	cols := g.Columns()
	var rows []string
	for start := 0; start < len(g.movies); start += cols {
		end := start + cols
		if end > len(g.movies) {
			end = len(g.movies)
		}
		cards := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cards = append(cards, MovieCard(g.movies[i], i == g.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
