package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/kinoteka/internal/domain"
	"github.com/mmcdole/kinoteka/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

// anyGenre is the first picker entry and clears the genre filter
var anyGenre = domain.Genre{Name: "All genres"}

// GenrePicker is a fuzzy-filtered genre list
type GenrePicker struct {
	input    textinput.Model
	genres   []domain.Genre
	filtered []domain.Genre
	cursor   int
	visible  bool
	height   int
}

// NewGenrePicker creates a hidden picker
func NewGenrePicker() GenrePicker {
	ti := textinput.New()
	ti.Placeholder = "Filter genres..."
	ti.CharLimit = 40
	ti.Width = 30
	ti.Prompt = "/ "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle
	return GenrePicker{input: ti, height: 10}
}

// SetGenres replaces the selectable genres
func (p *GenrePicker) SetGenres(genres []domain.Genre) {
	p.genres = genres
	p.filter()
}

// Show opens the picker with an empty filter
func (p *GenrePicker) Show() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	p.filter()
	return p.input.Focus()
}

// Hide closes the picker
func (p *GenrePicker) Hide() {
	p.visible = false
	p.input.Blur()
}

// IsVisible returns true if the picker is open
func (p GenrePicker) IsVisible() bool {
	return p.visible
}

// MoveUp moves the cursor up
func (p *GenrePicker) MoveUp() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// MoveDown moves the cursor down
func (p *GenrePicker) MoveDown() {
	if p.cursor < len(p.filtered)-1 {
		p.cursor++
	}
}

// Selected returns the genre under the cursor; the zero Genre means any
func (p GenrePicker) Selected() (domain.Genre, bool) {
	if p.cursor < 0 || p.cursor >= len(p.filtered) {
		return domain.Genre{}, false
	}
	g := p.filtered[p.cursor]
	if g == anyGenre {
		return domain.Genre{}, true
	}
	return g, true
}

// Update handles typing into the filter
func (p GenrePicker) Update(msg tea.Msg) (GenrePicker, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	prev := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != prev {
		p.filter()
	}
	return p, cmd
}

// filter recomputes the visible genres from the filter text
func (p *GenrePicker) filter() {
	query := strings.TrimSpace(p.input.Value())
	p.cursor = 0
	if query == "" {
		p.filtered = append([]domain.Genre{anyGenre}, p.genres...)
		return
	}

	names := make([]string, len(p.genres))
	for i, g := range p.genres {
		names[i] = strings.ToLower(g.Name)
	}
	matches := fuzzy.Find(strings.ToLower(query), names)

	p.filtered = make([]domain.Genre, len(matches))
	for i, match := range matches {
		p.filtered[i] = p.genres[match.Index]
	}
}

// Filtered returns the genres currently listed
func (p GenrePicker) Filtered() []domain.Genre {
	return p.filtered
}

// View renders the picker as a panel
func (p GenrePicker) View() string {
	if !p.visible {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.PanelTitleStyle.Render("Genre"))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n")

	if len(p.filtered) == 0 {
		b.WriteString(styles.DimStyle.Render("No matching genres"))
		return styles.PanelStyle.Render(b.String())
	}

	start := 0
	if p.cursor >= p.height {
		start = p.cursor - p.height + 1
	}
	end := start + p.height
	if end > len(p.filtered) {
		end = len(p.filtered)
	}
	for i := start; i < end; i++ {
		line := "  " + p.filtered[i].Name
		if i == p.cursor {
			line = styles.SelectedItemStyle.Render("> " + p.filtered[i].Name)
		} else {
			line = styles.NormalItemStyle.Render(line)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return styles.PanelStyle.Render(b.String())
}
