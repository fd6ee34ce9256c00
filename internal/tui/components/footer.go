package components

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/kinoteka/internal/tui/styles"
)

// Footer shows the shareable link of the current search and key help
type Footer struct {
	help  help.Model
	link  string
	width int
}

// NewFooter creates a footer with short help
func NewFooter() Footer {
	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	h.Styles.FullKey = styles.HelpKeyStyle
	h.Styles.FullDesc = styles.HelpDescStyle
	return Footer{help: h}
}

// SetLink sets the displayed link
func (f *Footer) SetLink(link string) {
	f.link = link
}

// Link returns the displayed link
func (f Footer) Link() string {
	return f.link
}

// SetWidth sets the available width
func (f *Footer) SetWidth(width int) {
	f.width = width
	f.help.Width = width
}

// ToggleFullHelp switches between short and full help
func (f *Footer) ToggleFullHelp() {
	f.help.ShowAll = !f.help.ShowAll
}

// View renders the footer
func (f Footer) View(keys help.KeyMap) string {
	link := f.link
	if link == "" {
		link = "(new movies)"
	}
	linkLine := styles.DimStyle.Render("link ") + styles.SubtitleStyle.Render(styles.Truncate(link, f.width-5))
	return lipgloss.JoinVertical(lipgloss.Left, linkLine, f.help.View(keys))
}
