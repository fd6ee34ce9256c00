package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/kinoteka/internal/domain"
	"github.com/mmcdole/kinoteka/internal/tui/components"
	"github.com/mmcdole/kinoteka/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	tabs := m.tabRects()
	panels, rects := m.panelLayout(tabs)

	active := func(kind domain.HistoryKind) bool {
		p := m.panelByKind(kind)
		return p != nil && p.Visible()
	}
	header := styles.TitleStyle.Render(appTitle) + "  " + components.RenderTabs(m.kinds(), active)

	sections := []string{header}
	if block := components.PlacePanels(panels, rects); block != "" {
		sections = append(sections, block)
	}
	sections = append(sections, m.form.View())
	if m.picker.IsVisible() {
		sections = append(sections, m.picker.View())
	}
	sections = append(sections, "", m.renderResults())
	if m.notice != "" {
		style := styles.SuccessStyle
		if m.noticeE {
			style = styles.ErrorStyle
		}
		sections = append(sections, style.Render(m.notice))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	footer := m.footer.View(m.keys)

	// Pin the footer to the bottom row when there is room
	gap := m.height - lipgloss.Height(body) - lipgloss.Height(footer)
	if gap > 0 {
		body += strings.Repeat("\n", gap)
	}
	return body + "\n" + footer
}

// renderResults draws the results header, the status section or the grid,
// and the pagination controls
func (m Model) renderResults() string {
	switch m.status.Section() {
	case components.SectionNone:
		return styles.DimStyle.Render("Starting...")
	case components.SectionLoading, components.SectionError:
		return m.status.View()
	case components.SectionEmpty:
		return lipgloss.JoinVertical(lipgloss.Left, m.resultsTitle(), "", m.status.View())
	}

	parts := []string{m.resultsTitle(), m.grid.View()}
	if p := components.RenderPagination(components.Pagination(m.page.Total, m.page.Page, m.page.Limit)); p != "" {
		parts = append(parts, p)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) resultsTitle() string {
	if m.page.Mode == domain.ModeSearch && m.page.Header != "" {
		return styles.SubtitleStyle.Render(m.page.Header)
	}
	return styles.SubtitleStyle.Render("New movies")
}
