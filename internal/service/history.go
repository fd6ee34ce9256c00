package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/kinoteka/internal/domain"
)

// Panel timing
const (
	PanelOpenDelay  = 150 * time.Millisecond
	PanelCloseDelay = 300 * time.Millisecond
	PanelCacheTTL   = 60 * time.Second
	PanelItemLimit  = 5
)

// PanelState is the visibility of a history panel
type PanelState int

const (
	PanelHidden PanelState = iota
	PanelLoading
	PanelShown
	PanelFailed
)

// String returns the state name
func (s PanelState) String() string {
	switch s {
	case PanelHidden:
		return "hidden"
	case PanelLoading:
		return "loading"
	case PanelShown:
		return "shown"
	case PanelFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TimerAction is what a scheduled panel timer does when it fires
type TimerAction int

const (
	TimerOpen TimerAction = iota
	TimerClose
)

// PanelTimer asks the caller to call Fire with Gen after Delay
type PanelTimer struct {
	Gen    uint64
	Delay  time.Duration
	Action TimerAction
}

// HistorySource loads a history feed
type HistorySource func(ctx context.Context, limit int) ([]domain.HistoryItem, error)

// SelectHandler runs when an entry of a panel is chosen
type SelectHandler func(ctx context.Context, item domain.HistoryItem) error

// PanelView is a snapshot of a panel for rendering
type PanelView struct {
	Kind   domain.HistoryKind
	State  PanelState
	Items  []domain.HistoryItem
	Err    error
	Pinned bool
}

// HistoryPanelOptions configures a HistoryPanel. Zero durations use the defaults.
type HistoryPanelOptions struct {
	Limit      int
	OpenDelay  time.Duration
	CloseDelay time.Duration
	TTL        time.Duration
	Clock      func() time.Time
}

// HistoryPanel is a hover-disclosed list of prior searches with its own
// short-lived cache. Pointer events bump a generation so that only the
// newest scheduled timer takes effect.
type HistoryPanel struct {
	kind       domain.HistoryKind
	source     HistorySource
	onSelect   SelectHandler
	limit      int
	openDelay  time.Duration
	closeDelay time.Duration
	ttl        time.Duration
	now        func() time.Time
	logger     *slog.Logger

	mu        sync.Mutex
	state     PanelState
	gen       uint64
	pinned    bool
	fetching  bool
	items     []domain.HistoryItem
	fetchedAt time.Time
	err       error
}

// NewHistoryPanel creates a hidden panel backed by source
func NewHistoryPanel(kind domain.HistoryKind, source HistorySource, onSelect SelectHandler, opts HistoryPanelOptions, logger *slog.Logger) *HistoryPanel {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Limit <= 0 {
		opts.Limit = PanelItemLimit
	}
	if opts.OpenDelay == 0 {
		opts.OpenDelay = PanelOpenDelay
	}
	if opts.CloseDelay == 0 {
		opts.CloseDelay = PanelCloseDelay
	}
	if opts.TTL == 0 {
		opts.TTL = PanelCacheTTL
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &HistoryPanel{
		kind:       kind,
		source:     source,
		onSelect:   onSelect,
		limit:      opts.Limit,
		openDelay:  opts.OpenDelay,
		closeDelay: opts.CloseDelay,
		ttl:        opts.TTL,
		now:        opts.Clock,
		logger:     logger,
	}
}

// Kind returns the feed this panel shows
func (p *HistoryPanel) Kind() domain.HistoryKind {
	return p.kind
}

// EnterTrigger schedules opening the panel
func (p *HistoryPanel) EnterTrigger() PanelTimer {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	return PanelTimer{Gen: p.gen, Delay: p.openDelay, Action: TimerOpen}
}

// LeaveTrigger schedules closing the panel
func (p *HistoryPanel) LeaveTrigger() PanelTimer {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	return PanelTimer{Gen: p.gen, Delay: p.closeDelay, Action: TimerClose}
}

// EnterPanel cancels any pending timer and keeps the panel open
func (p *HistoryPanel) EnterPanel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	if p.state != PanelHidden {
		p.pinned = true
	}
}

// LeavePanel unpins and hides the panel
func (p *HistoryPanel) LeavePanel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.pinned = false
	p.state = PanelHidden
}

// Fire applies a timer scheduled by EnterTrigger or LeaveTrigger.
// Stale timers are ignored. It returns true when the caller must call Load.
func (p *HistoryPanel) Fire(t PanelTimer) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t.Gen != p.gen {
		return false
	}

	switch t.Action {
	case TimerOpen:
		return p.openLocked()
	case TimerClose:
		if !p.pinned {
			p.state = PanelHidden
		}
	}
	return false
}

// Open shows the panel immediately, for keyboard use.
// It returns true when the caller must call Load.
func (p *HistoryPanel) Open() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	return p.openLocked()
}

// Hide closes the panel immediately
func (p *HistoryPanel) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.pinned = false
	p.state = PanelHidden
}

// Visible reports whether the panel is not hidden
func (p *HistoryPanel) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state != PanelHidden
}

func (p *HistoryPanel) openLocked() bool {
	if p.freshLocked() {
		p.state = PanelShown
		return false
	}
	p.state = PanelLoading
	if p.fetching {
		return false
	}
	p.fetching = true
	return true
}

func (p *HistoryPanel) freshLocked() bool {
	return !p.fetchedAt.IsZero() && p.now().Sub(p.fetchedAt) <= p.ttl
}

// Load fetches the feed and updates the cache. A panel that was hidden
// meanwhile stays hidden but keeps the fetched items.
func (p *HistoryPanel) Load(ctx context.Context) error {
	items, err := p.source(ctx, p.limit)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetching = false

	if err != nil {
		if errors.Is(err, context.Canceled) {
			if p.state == PanelLoading {
				p.state = PanelHidden
			}
			return err
		}
		p.logger.Error("failed to load search history", "feed", p.kind.String(), "error", err)
		p.err = err
		if p.state == PanelLoading {
			p.state = PanelFailed
		}
		return err
	}

	p.items = items
	p.fetchedAt = p.now()
	p.err = nil
	if p.state == PanelLoading || p.state == PanelFailed {
		p.state = PanelShown
	}
	return nil
}

// Retry reloads a failed panel. It returns true when the caller must call Load.
func (p *HistoryPanel) Retry() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PanelFailed {
		return false
	}
	p.state = PanelLoading
	if p.fetching {
		return false
	}
	p.fetching = true
	return true
}

// Invalidate drops the cached items so the next open fetches again
func (p *HistoryPanel) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetchedAt = time.Time{}
}

// View returns a snapshot for rendering
func (p *HistoryPanel) View() PanelView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PanelView{
		Kind:   p.kind,
		State:  p.state,
		Items:  append([]domain.HistoryItem(nil), p.items...),
		Err:    p.err,
		Pinned: p.pinned,
	}
}

// Select hides the panel and runs the selection handler for entry i
func (p *HistoryPanel) Select(ctx context.Context, i int) error {
	p.mu.Lock()
	if i < 0 || i >= len(p.items) {
		p.mu.Unlock()
		return fmt.Errorf("history entry %d out of range", i)
	}
	item := p.items[i]
	p.gen++
	p.pinned = false
	p.state = PanelHidden
	p.mu.Unlock()

	if p.onSelect == nil {
		return nil
	}
	return p.onSelect(ctx, item)
}

// DescribeHistoryItem returns the display text of a history entry.
// genreName maps genre IDs to names and may be nil.
func DescribeHistoryItem(item domain.HistoryItem, genreName func(id string) string) string {
	if item.DisplayText != "" {
		return item.DisplayText
	}

	var parts []string
	if item.Query != "" {
		parts = append(parts, fmt.Sprintf("%q", item.Query))
	}
	if len(item.Genres) > 0 {
		names := make([]string, len(item.Genres))
		for i, id := range item.Genres {
			names[i] = id
			if genreName != nil {
				if n := genreName(id); n != "" {
					names[i] = n
				}
			}
		}
		parts = append(parts, "genres: "+strings.Join(names, ", "))
	}
	switch {
	case item.YearFrom != "" && item.YearTo != "":
		parts = append(parts, fmt.Sprintf("years: %s-%s", item.YearFrom, item.YearTo))
	case item.YearFrom != "":
		parts = append(parts, "years: "+item.YearFrom)
	case item.YearTo != "":
		parts = append(parts, "years: "+item.YearTo)
	}

	if len(parts) == 0 {
		return "Search"
	}
	return strings.Join(parts, ", ")
}
