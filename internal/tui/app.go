package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/kinoteka/internal/domain"
	"github.com/mmcdole/kinoteka/internal/service"
	"github.com/mmcdole/kinoteka/internal/tui/components"
	"github.com/mmcdole/kinoteka/internal/tui/styles"
)

// focusArea is the component receiving key input
type focusArea int

const (
	focusGrid focusArea = iota
	focusForm
	focusPicker
	focusPanel
)

// appTitle is drawn left of the history tabs on the first row
const appTitle = "kinoteka"

// Options wires a Model to the application services
type Options struct {
	Ctx      context.Context
	Searcher *service.Searcher
	Panels   []*service.HistoryPanel // tab order
	Opener   Opener
	Messages <-chan tea.Msg // from ChannelPresenter
	Start    func(ctx context.Context) error
	Clock    func() time.Time
	Logger   *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	ctx      context.Context
	searcher *service.Searcher
	panels   []*service.HistoryPanel
	opener   Opener
	messages <-chan tea.Msg
	start    func(ctx context.Context) error
	now      func() time.Time
	logger   *slog.Logger

	keys   KeyMap
	form   components.FilterForm
	picker components.GenrePicker
	grid   components.MovieGrid
	status components.Status
	footer components.Footer

	focus       focusArea
	pickerFrom  focusArea // focus to restore when the picker closes
	panelIdx    int       // panel with keyboard focus
	panelCursor int

	// Pointer position, -1 when not over a tab or panel
	hoverTab   int
	hoverPanel int

	page    domain.ResultPage
	genres  []domain.Genre
	notice  string
	noticeE bool

	width  int
	height int
	ready  bool
}

// NewModel creates a new application model
func NewModel(opts Options) Model {
	if opts.Ctx == nil {
		opts.Ctx = context.Background()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return Model{
		ctx:        opts.Ctx,
		searcher:   opts.Searcher,
		panels:     opts.Panels,
		opener:     opts.Opener,
		messages:   opts.Messages,
		start:      opts.Start,
		now:        opts.Clock,
		logger:     opts.Logger,
		keys:       DefaultKeyMap(),
		form:       components.NewFilterForm(),
		picker:     components.NewGenrePicker(),
		grid:       components.NewMovieGrid(),
		status:     components.NewStatus(),
		footer:     components.NewFooter(),
		hoverTab:   -1,
		hoverPanel: -1,
	}
}

// Init starts listening to the presenter and runs the startup sequence
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.messages != nil {
		cmds = append(cmds, WaitForPresenterCmd(m.messages))
	}
	if m.start != nil {
		cmds = append(cmds, StartCmd(m.ctx, m.start))
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.grid.SetWidth(msg.Width)
		m.form.SetWidth(msg.Width)
		m.footer.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKeyMsg(msg)
		return m, cmd

	case tea.MouseMsg:
		cmd := m.handleMouseMsg(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.status, cmd = m.status.Update(msg)
		return m, cmd

	case PanelTimerMsg:
		p := m.panelByKind(msg.Kind)
		if p != nil && p.Fire(msg.Timer) {
			return m, LoadPanelCmd(m.ctx, p)
		}
		return m, nil

	case PanelLoadedMsg:
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.logger.Debug("history panel load failed", "feed", msg.Kind.String(), "error", msg.Err)
		}
		return m, nil

	case DoneMsg:
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.logger.Debug("operation failed", "op", msg.Op, "error", msg.Err)
			// the searcher presents its own failures; this one it never saw
			if errors.Is(msg.Err, domain.ErrGenreNotFound) {
				m.setNotice(msg.Err.Error(), true)
			}
		}
		return m, nil

	case OpenedMsg:
		if msg.Err != nil {
			m.setNotice("Could not open "+msg.URL, true)
			m.logger.Error("failed to open browser", "url", msg.URL, "error", msg.Err)
		} else {
			m.setNotice("Opened "+msg.URL, false)
		}
		return m, nil

	case presenterClosedMsg:
		return m, nil
	}

	if cmd, ok := m.handlePresenterMsg(msg); ok {
		// one reader at a time keeps presenter messages in order
		if m.messages != nil {
			cmd = tea.Batch(cmd, WaitForPresenterCmd(m.messages))
		}
		return m, cmd
	}

	// Cursor blinks and other component messages
	var formCmd, pickerCmd tea.Cmd
	m.form, formCmd = m.form.Update(msg)
	m.picker, pickerCmd = m.picker.Update(msg)
	return m, tea.Batch(formCmd, pickerCmd)
}

// handlePresenterMsg applies a view update from the searcher.
// It reports false for messages that did not come from the presenter.
func (m *Model) handlePresenterMsg(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case YearBoundsMsg:
		m.form.SetBounds(msg.Bounds)

	case FormMsg:
		m.form.SetValues(msg.Filters, m.genreName(msg.Filters.GenreID))

	case LoadingMsg:
		return m.status.Loading(msg.Mode), true

	case ResultsMsg:
		m.page = msg.Page
		m.grid.SetMovies(msg.Page.Items)
		m.status.Results()

	case NoResultsMsg:
		m.page = msg.Page
		m.grid.SetMovies(nil)
		m.status.Empty()

	case ErrMsg:
		m.status.Error(msg.Err)

	case GenresMsg:
		m.genres = msg.Genres
		m.picker.SetGenres(msg.Genres)
		f := m.form.Values()
		m.form.SetGenre(domain.Genre{ID: f.GenreID, Name: m.genreName(f.GenreID)})

	case HistoryChangedMsg:
		if p := m.panelByKind(msg.Kind); p != nil {
			p.Invalidate()
		}

	case LinkMsg:
		m.footer.SetLink(msg.Link)

	default:
		return nil, false
	}
	return nil, true
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	switch m.focus {
	case focusForm:
		return m.handleFormKey(msg)
	case focusPicker:
		return m.handlePickerKey(msg)
	case focusPanel:
		return m.handlePanelKey(msg)
	}

	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.footer.ToggleFullHelp()
	case key.Matches(msg, m.keys.Search):
		m.focus = focusForm
		return m.form.Focus(components.FieldQuery)
	case key.Matches(msg, m.keys.Genre):
		return m.openPicker(focusGrid)
	case key.Matches(msg, m.keys.Up):
		m.grid.Move(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.grid.Move(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.grid.Move(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.grid.Move(1, 0)
	case key.Matches(msg, m.keys.PrevPage):
		return PrevPageCmd(m.ctx, m.searcher)
	case key.Matches(msg, m.keys.NextPage):
		return NextPageCmd(m.ctx, m.searcher)
	case key.Matches(msg, m.keys.Open), key.Matches(msg, m.keys.Submit):
		if movie, ok := m.grid.Selected(); ok && m.opener != nil {
			return OpenMovieCmd(m.opener, movie)
		}
	case key.Matches(msg, m.keys.Reset):
		return ResetFiltersCmd(m.ctx, m.searcher)
	case key.Matches(msg, m.keys.NewMovies):
		return NewMoviesCmd(m.ctx, m.searcher)
	case key.Matches(msg, m.keys.Retry):
		return RetryCmd(m.ctx, m.searcher)
	case key.Matches(msg, m.keys.Recent):
		return m.togglePanel(domain.HistoryRecent)
	case key.Matches(msg, m.keys.Popular):
		return m.togglePanel(domain.HistoryPopular)
	case key.Matches(msg, m.keys.Unique):
		return m.togglePanel(domain.HistoryUnique)
	case key.Matches(msg, m.keys.Escape):
		m.hidePanels()
	}
	return nil
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.form.Blur()
		m.focus = focusGrid
		return nil
	case key.Matches(msg, m.keys.NextItem):
		return m.form.Next()
	case key.Matches(msg, m.keys.PrevItem):
		return m.form.Prev()
	case key.Matches(msg, m.keys.Submit):
		if m.form.FocusedField() == components.FieldGenre {
			return m.openPicker(focusForm)
		}
		m.form.Blur()
		m.focus = focusGrid
		return SearchCmd(m.ctx, m.searcher, m.form.Values())
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return cmd
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.closePicker()
		return nil
	case msg.String() == "up":
		m.picker.MoveUp()
		return nil
	case msg.String() == "down":
		m.picker.MoveDown()
		return nil
	case key.Matches(msg, m.keys.Submit):
		genre, ok := m.picker.Selected()
		if !ok {
			return nil
		}
		m.form.SetGenre(genre)
		from := m.pickerFrom
		m.closePicker()
		if from == focusGrid {
			return SearchCmd(m.ctx, m.searcher, m.form.Values())
		}
		return nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return cmd
}

func (m *Model) handlePanelKey(msg tea.KeyMsg) tea.Cmd {
	p := m.panels[m.panelIdx]
	if !p.Visible() {
		m.focus = focusGrid
		return m.handleKeyMsg(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Quit):
		p.Hide()
		m.focus = focusGrid
	case key.Matches(msg, m.keys.Up):
		if m.panelCursor > 0 {
			m.panelCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.panelCursor < len(p.View().Items)-1 {
			m.panelCursor++
		}
	case key.Matches(msg, m.keys.Submit):
		if m.panelCursor < len(p.View().Items) {
			m.focus = focusGrid
			return SelectHistoryCmd(m.ctx, p, m.panelCursor)
		}
	case key.Matches(msg, m.keys.Retry):
		if p.Retry() {
			return LoadPanelCmd(m.ctx, p)
		}
	case key.Matches(msg, m.keys.Recent):
		return m.togglePanel(domain.HistoryRecent)
	case key.Matches(msg, m.keys.Popular):
		return m.togglePanel(domain.HistoryPopular)
	case key.Matches(msg, m.keys.Unique):
		return m.togglePanel(domain.HistoryUnique)
	}
	return nil
}

func (m *Model) openPicker(from focusArea) tea.Cmd {
	m.form.Blur()
	m.pickerFrom = from
	m.focus = focusPicker
	return m.picker.Show()
}

func (m *Model) closePicker() {
	m.picker.Hide()
	m.focus = m.pickerFrom
	if m.focus == focusForm {
		m.form.Focus(components.FieldGenre)
	}
}

// togglePanel opens the panel of kind for keyboard use, or hides it if open
func (m *Model) togglePanel(kind domain.HistoryKind) tea.Cmd {
	idx := m.panelIndex(kind)
	if idx < 0 {
		return nil
	}
	p := m.panels[idx]
	if p.Visible() && m.focus == focusPanel && m.panelIdx == idx {
		p.Hide()
		m.focus = focusGrid
		return nil
	}

	m.hidePanels()
	m.focus = focusPanel
	m.panelIdx = idx
	m.panelCursor = 0
	if p.Open() {
		return LoadPanelCmd(m.ctx, p)
	}
	return nil
}

func (m *Model) hidePanels() {
	for _, p := range m.panels {
		p.Hide()
	}
	if m.focus == focusPanel {
		m.focus = focusGrid
	}
}

// handleMouseMsg turns pointer motion into panel hover events and clicks
// into history selections
func (m *Model) handleMouseMsg(msg tea.MouseMsg) tea.Cmd {
	tabs := m.tabRects()
	panels, rects := m.panelLayout(tabs)

	tab := -1
	for i, r := range tabs {
		if r.Contains(msg.X, msg.Y) {
			tab = i
		}
	}
	over := -1
	for i, r := range rects {
		if panels[i] != "" && r.Contains(msg.X, msg.Y) {
			over = i
		}
	}

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if over >= 0 {
			if item := m.panelItemAt(over, msg.Y-rects[over].Y); item >= 0 {
				m.hoverPanel = -1
				return SelectHistoryCmd(m.ctx, m.panels[over], item)
			}
		}
		if tab >= 0 {
			return m.togglePanel(m.panels[tab].Kind())
		}
		return nil
	}

	var cmds []tea.Cmd
	if tab != m.hoverTab {
		if m.hoverTab >= 0 {
			p := m.panels[m.hoverTab]
			cmds = append(cmds, PanelTimerCmd(p.Kind(), p.LeaveTrigger()))
		}
		if tab >= 0 {
			p := m.panels[tab]
			cmds = append(cmds, PanelTimerCmd(p.Kind(), p.EnterTrigger()))
		}
		m.hoverTab = tab
	}
	if over != m.hoverPanel {
		if m.hoverPanel >= 0 {
			m.panels[m.hoverPanel].LeavePanel()
		}
		if over >= 0 {
			m.panels[over].EnterPanel()
		}
		m.hoverPanel = over
	}
	return tea.Batch(cmds...)
}

// panelItemAt maps a row inside a rendered panel to an entry index, or -1
func (m Model) panelItemAt(idx, row int) int {
	v := m.panels[idx].View()
	if v.State != service.PanelShown {
		return -1
	}
	// border and title
	line := 2
	for i, item := range v.Items {
		h := 1
		if components.HistoryMeta(v.Kind, item, m.now()) != "" {
			h = 2
		}
		if row >= line && row < line+h {
			return i
		}
		line += h
	}
	return -1
}

func (m Model) tabRects() []components.Rect {
	x := lipgloss.Width(styles.TitleStyle.Render(appTitle)) + 2
	return components.TabRects(m.kinds(), x, 0)
}

// panelLayout renders the panels and places them under their tabs
func (m Model) panelLayout(tabs []components.Rect) ([]string, []components.Rect) {
	panels := make([]string, len(m.panels))
	for i, p := range m.panels {
		cursor := -1
		if m.focus == focusPanel && m.panelIdx == i {
			cursor = m.panelCursor
		}
		panels[i] = components.RenderHistoryPanel(p.View(), cursor, m.describeHistory, m.now())
	}
	return panels, components.PanelRects(tabs, panels)
}

func (m Model) describeHistory(item domain.HistoryItem) string {
	return service.DescribeHistoryItem(item, m.genreName)
}

func (m Model) kinds() []domain.HistoryKind {
	kinds := make([]domain.HistoryKind, len(m.panels))
	for i, p := range m.panels {
		kinds[i] = p.Kind()
	}
	return kinds
}

func (m Model) panelIndex(kind domain.HistoryKind) int {
	for i, p := range m.panels {
		if p.Kind() == kind {
			return i
		}
	}
	return -1
}

func (m Model) panelByKind(kind domain.HistoryKind) *service.HistoryPanel {
	if i := m.panelIndex(kind); i >= 0 {
		return m.panels[i]
	}
	return nil
}

func (m Model) genreName(id string) string {
	for _, g := range m.genres {
		if g.ID == id {
			return g.Name
		}
	}
	return ""
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeE = isErr
}
