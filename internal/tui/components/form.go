package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/kinoteka/internal/domain"
	"github.com/mmcdole/kinoteka/internal/tui/styles"
)

// Form fields in focus order
const (
	FieldQuery = iota
	FieldYearFrom
	FieldYearTo
	FieldGenre
	fieldCount
)

// FilterForm holds the search form: keyword, year bounds and genre
type FilterForm struct {
	inputs  [3]textinput.Model
	genre   domain.Genre // zero for any genre
	focus   int
	focused bool
	width   int
}

// NewFilterForm creates an empty, unfocused form
func NewFilterForm() FilterForm {
	var f FilterForm
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.PromptStyle = styles.AccentStyle
		ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
		ti.PlaceholderStyle = styles.DimStyle
		f.inputs[i] = ti
	}
	f.inputs[FieldQuery].Placeholder = "title or keyword"
	f.inputs[FieldQuery].CharLimit = 100
	f.inputs[FieldQuery].Width = 30
	for _, i := range []int{FieldYearFrom, FieldYearTo} {
		f.inputs[i].CharLimit = 4
		f.inputs[i].Width = 6
		f.inputs[i].Validate = digitsOnly
	}
	return f
}

func digitsOnly(s string) error {
	if _, err := strconv.Atoi(s); s != "" && err != nil {
		return err
	}
	return nil
}

// SetBounds shows the catalog year range as placeholders of the year fields
func (f *FilterForm) SetBounds(r domain.YearRange) {
	f.inputs[FieldYearFrom].Placeholder = strconv.Itoa(r.Min)
	f.inputs[FieldYearTo].Placeholder = strconv.Itoa(r.Max)
}

// SetValues fills the form. genreName resolves the genre label.
func (f *FilterForm) SetValues(v domain.SearchFilters, genreName string) {
	f.inputs[FieldQuery].SetValue(v.Query)
	f.inputs[FieldYearFrom].SetValue(v.YearFrom)
	f.inputs[FieldYearTo].SetValue(v.YearTo)
	f.genre = domain.Genre{ID: v.GenreID, Name: genreName}
}

// SetGenre picks a genre; the zero Genre means any
func (f *FilterForm) SetGenre(g domain.Genre) {
	f.genre = g
}

// Values reads the form
func (f FilterForm) Values() domain.SearchFilters {
	return domain.SearchFilters{
		Query:    strings.TrimSpace(f.inputs[FieldQuery].Value()),
		YearFrom: strings.TrimSpace(f.inputs[FieldYearFrom].Value()),
		YearTo:   strings.TrimSpace(f.inputs[FieldYearTo].Value()),
		GenreID:  f.genre.ID,
	}
}

// Focus focuses the form on field
func (f *FilterForm) Focus(field int) tea.Cmd {
	f.focused = true
	f.focus = field
	return f.syncFocus()
}

// Blur leaves the form
func (f *FilterForm) Blur() {
	f.focused = false
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

// Focused reports whether the form has keyboard focus
func (f FilterForm) Focused() bool {
	return f.focused
}

// FocusedField returns the field with focus
func (f FilterForm) FocusedField() int {
	return f.focus
}

// Next moves focus forward, wrapping around
func (f *FilterForm) Next() tea.Cmd {
	f.focus = (f.focus + 1) % fieldCount
	return f.syncFocus()
}

// Prev moves focus backward, wrapping around
func (f *FilterForm) Prev() tea.Cmd {
	f.focus = (f.focus + fieldCount - 1) % fieldCount
	return f.syncFocus()
}

func (f *FilterForm) syncFocus() tea.Cmd {
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.focus && f.focused {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

// SetWidth sets the available width
func (f *FilterForm) SetWidth(width int) {
	f.width = width
	if w := width - 60; w > 30 {
		f.inputs[FieldQuery].Width = w
	}
}

// Update forwards key input to the focused text field
func (f FilterForm) Update(msg tea.Msg) (FilterForm, tea.Cmd) {
	if !f.focused || f.focus >= len(f.inputs) {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// View renders the form on one line
func (f FilterForm) View() string {
	label := func(field int, text string) string {
		if f.focused && f.focus == field {
			return styles.FocusedLabelStyle.Width(0).Render(text)
		}
		return styles.LabelStyle.Width(0).Render(text)
	}

	genre := styles.DimStyle.Render("any")
	if f.genre.ID != "" {
		name := f.genre.Name
		if name == "" {
			name = "Genre"
		}
		genre = styles.TitleStyle.Render(name)
	}
	if f.focused && f.focus == FieldGenre {
		genre += styles.DimStyle.Render(" (enter to pick)")
	}

	return strings.Join([]string{
		label(FieldQuery, "Search ") + f.inputs[FieldQuery].View(),
		label(FieldYearFrom, "From ") + f.inputs[FieldYearFrom].View(),
		label(FieldYearTo, "To ") + f.inputs[FieldYearTo].View(),
		label(FieldGenre, "Genre ") + genre,
	}, "  ")
}
