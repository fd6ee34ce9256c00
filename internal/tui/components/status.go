package components

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/kinoteka/internal/domain"
	"github.com/mmcdole/kinoteka/internal/tui/styles"
)

// Section is which status section of the results area is visible
type Section int

const (
	SectionNone Section = iota
	SectionLoading
	SectionError
	SectionEmpty
	SectionResults
)

// Status renders the loading, error and no-results sections
type Status struct {
	section Section
	mode    domain.Mode
	err     error
	spinner spinner.Model
}

// NewStatus creates a status with no section visible
func NewStatus() Status {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle
	return Status{spinner: s}
}

// Section returns the visible section
func (s Status) Section() Section {
	return s.section
}

// Loading shows the spinner and returns the command that animates it
func (s *Status) Loading(mode domain.Mode) tea.Cmd {
	wasLoading := s.section == SectionLoading
	s.section = SectionLoading
	s.mode = mode
	s.err = nil
	if wasLoading {
		return nil
	}
	return s.spinner.Tick
}

// Error shows err with a retry hint
func (s *Status) Error(err error) {
	s.section = SectionError
	s.err = err
}

// Empty shows the no-results section
func (s *Status) Empty() {
	s.section = SectionEmpty
	s.err = nil
}

// Results hides the status sections in favor of the grid
func (s *Status) Results() {
	s.section = SectionResults
	s.err = nil
}

// Update advances the spinner while loading
func (s Status) Update(msg tea.Msg) (Status, tea.Cmd) {
	if s.section != SectionLoading {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the visible section
func (s Status) View() string {
	switch s.section {
	case SectionLoading:
		label := "Loading new movies..."
		if s.mode == domain.ModeSearch {
			label = "Searching..."
		}
		return s.spinner.View() + " " + styles.DimStyle.Render(label)
	case SectionError:
		return styles.ErrorStyle.Render(ErrorText(s.err)) + "\n" +
			styles.DimStyle.Render("Press R to retry")
	case SectionEmpty:
		return styles.SubtitleStyle.Render("No movies found. Try other filters or press x to reset.")
	default:
		return ""
	}
}

// ErrorText returns the user-facing message for a failed request
func ErrorText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrServerOffline):
		return "The movie server is unreachable."
	case errors.Is(err, domain.ErrDecode):
		return "The movie server sent an unexpected response."
	default:
		return "Something went wrong while loading movies."
	}
}
