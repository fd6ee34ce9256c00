package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/kinoteka/internal/domain"
)

func newTestPanel(meta *fakeMeta, clock *fakeClock, onSelect SelectHandler) *HistoryPanel {
	source := func(ctx context.Context, limit int) ([]domain.HistoryItem, error) {
		return meta.History(ctx, domain.HistoryRecent, limit)
	}
	return NewHistoryPanel(domain.HistoryRecent, source, onSelect, HistoryPanelOptions{Clock: clock.Now}, testLogger())
}

func TestHistoryPanel_OpenAfterDelay(t *testing.T) {
	meta := newFakeMeta()
	meta.history[domain.HistoryRecent] = []domain.HistoryItem{{Query: "heat"}}
	panel := newTestPanel(meta, newFakeClock(), nil)

	timer := panel.EnterTrigger()
	if timer.Delay != 150*time.Millisecond || timer.Action != TimerOpen {
		t.Fatalf("timer = %+v", timer)
	}
	if panel.Visible() {
		t.Fatal("panel visible before the timer fired")
	}

	if !panel.Fire(timer) {
		t.Fatal("first open should request a load")
	}
	if st := panel.View().State; st != PanelLoading {
		t.Fatalf("state = %v, want loading", st)
	}
	if err := panel.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	v := panel.View()
	if v.State != PanelShown || len(v.Items) != 1 {
		t.Errorf("view = %+v", v)
	}
}

func TestHistoryPanel_StaleTimersIgnored(t *testing.T) {
	panel := newTestPanel(newFakeMeta(), newFakeClock(), nil)

	open := panel.EnterTrigger()
	closeTimer := panel.LeaveTrigger()
	if closeTimer.Delay != 300*time.Millisecond {
		t.Errorf("close delay = %v", closeTimer.Delay)
	}

	if panel.Fire(open) {
		t.Error("superseded open timer requested a load")
	}
	if panel.Visible() {
		t.Error("superseded open timer showed the panel")
	}

	// A quick re-enter cancels the pending close
	reopen := panel.EnterTrigger()
	panel.Fire(closeTimer)
	panel.Fire(reopen)
	if !panel.Visible() {
		t.Error("panel hidden by a stale close timer")
	}
}

func TestHistoryPanel_PinnedWhilePointerOverPanel(t *testing.T) {
	meta := newFakeMeta()
	panel := newTestPanel(meta, newFakeClock(), nil)

	if panel.Fire(panel.EnterTrigger()) {
		panel.Load(context.Background())
	}
	closeTimer := panel.LeaveTrigger()
	panel.EnterPanel()

	panel.Fire(closeTimer)
	v := panel.View()
	if v.State != PanelShown || !v.Pinned {
		t.Errorf("view = %+v, want shown and pinned", v)
	}

	panel.LeavePanel()
	if panel.Visible() {
		t.Error("panel visible after the pointer left it")
	}
}

func TestHistoryPanel_CacheTTL(t *testing.T) {
	meta := newFakeMeta()
	clock := newFakeClock()
	panel := newTestPanel(meta, clock, nil)

	open := func() {
		if panel.Fire(panel.EnterTrigger()) {
			if err := panel.Load(context.Background()); err != nil {
				t.Fatal(err)
			}
		}
		panel.Fire(panel.LeaveTrigger())
	}

	open()
	clock.Advance(59 * time.Second)
	open()
	if n := meta.HistoryCalls(); n != 1 {
		t.Errorf("fetches within the TTL = %d, want 1", n)
	}

	clock.Advance(2 * time.Second)
	open()
	if n := meta.HistoryCalls(); n != 2 {
		t.Errorf("fetches after the TTL = %d, want 2", n)
	}

	panel.Invalidate()
	open()
	if n := meta.HistoryCalls(); n != 3 {
		t.Errorf("fetches after Invalidate = %d, want 3", n)
	}
}

func TestHistoryPanel_FailureAndRetry(t *testing.T) {
	meta := newFakeMeta()
	meta.histErr = errBackend
	panel := newTestPanel(meta, newFakeClock(), nil)

	if !panel.Open() {
		t.Fatal("Open should request a load")
	}
	if err := panel.Load(context.Background()); !errors.Is(err, errBackend) {
		t.Fatalf("err = %v", err)
	}
	v := panel.View()
	if v.State != PanelFailed || v.Err == nil {
		t.Fatalf("view = %+v, want failed", v)
	}

	meta.histErr = nil
	meta.history[domain.HistoryRecent] = []domain.HistoryItem{{Query: "alien"}}
	if !panel.Retry() {
		t.Fatal("Retry should request a load")
	}
	if err := panel.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if v := panel.View(); v.State != PanelShown || v.Err != nil || v.Items[0].Query != "alien" {
		t.Errorf("view after retry = %+v", v)
	}
	if panel.Retry() {
		t.Error("Retry on a shown panel requested a load")
	}
}

func TestHistoryPanel_HiddenWhileLoading(t *testing.T) {
	meta := newFakeMeta()
	meta.history[domain.HistoryRecent] = []domain.HistoryItem{{Query: "x"}}
	panel := newTestPanel(meta, newFakeClock(), nil)

	if !panel.Open() {
		t.Fatal("Open should request a load")
	}
	if panel.Open() {
		t.Error("second Open while fetching requested another load")
	}
	panel.Hide()
	if err := panel.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if panel.Visible() {
		t.Error("load reopened a hidden panel")
	}
	if panel.Open() {
		t.Error("fresh cache should open without a load")
	}
	if panel.View().State != PanelShown {
		t.Error("panel not shown from cache")
	}
}

func TestHistoryPanel_Select(t *testing.T) {
	meta := newFakeMeta()
	meta.history[domain.HistoryRecent] = []domain.HistoryItem{{Query: "a"}, {Query: "b", Genres: []string{"3"}}}

	var picked domain.HistoryItem
	panel := newTestPanel(meta, newFakeClock(), func(ctx context.Context, item domain.HistoryItem) error {
		picked = item
		return nil
	})

	panel.Open()
	panel.Load(context.Background())

	if err := panel.Select(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if picked.Query != "b" {
		t.Errorf("picked = %+v", picked)
	}
	if panel.Visible() {
		t.Error("panel still visible after a selection")
	}
	if err := panel.Select(context.Background(), 5); err == nil {
		t.Error("expected an error for an out of range entry")
	}
}

func TestHistoryPanel_SelectAppliesSearch(t *testing.T) {
	films := newFakeFilms(movies(3)...)
	h := newHarness(films, SearcherOptions{})
	h.meta.history[domain.HistoryRecent] = []domain.HistoryItem{{Query: "movie", YearFrom: "2001", Genres: []string{"2"}}}

	panel := newTestPanel(h.meta, h.clock, func(ctx context.Context, item domain.HistoryItem) error {
		return h.searcher.ApplyFilters(ctx, item.Filters())
	})
	panel.Open()
	panel.Load(context.Background())

	if err := panel.Select(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	form, _ := h.presenter.last("form")
	if form.form.Query != "movie" || form.form.YearFrom != "2001" {
		t.Errorf("form = %+v", form.form)
	}
	got, ok := h.presenter.last("results")
	if !ok || got.page.Total != 2 {
		t.Errorf("results = %+v", got.page)
	}
}

func TestHistoryPanel_SelectOpensLink(t *testing.T) {
	films := newFakeFilms(movies(3)...)
	h := newHarness(films, SearcherOptions{})
	h.meta.history[domain.HistoryUnique] = []domain.HistoryItem{{Query: "movie", YearFrom: "2001", Genres: []string{"4"}}}

	source := func(ctx context.Context, limit int) ([]domain.HistoryItem, error) {
		return h.meta.History(ctx, domain.HistoryUnique, limit)
	}
	openLink := func(ctx context.Context, item domain.HistoryItem) error {
		return h.searcher.OpenLink(ctx, EncodeHistoryLink(item))
	}
	panel := NewHistoryPanel(domain.HistoryUnique, source, openLink, HistoryPanelOptions{Clock: h.clock.Now}, testLogger())
	panel.Open()
	panel.Load(context.Background())

	if err := panel.Select(context.Background(), 0); err != nil {
		t.Fatal(err)
	}

	calls := films.Calls()
	if len(calls) != 1 || !strings.HasPrefix(calls[0], "keyword movie") {
		t.Errorf("calls = %v, want one keyword search", calls)
	}
	form, _ := h.presenter.last("form")
	if want := (domain.SearchFilters{Query: "movie", YearFrom: "2001"}); form.form != want {
		t.Errorf("form = %+v, want %+v", form.form, want)
	}
	link := h.location.Current()
	if !strings.Contains(link, "q=movie") || strings.Contains(link, "genres") {
		t.Errorf("link = %q, want the keyword without genres", link)
	}
	got, ok := h.presenter.last("results")
	if !ok || got.page.Total != 2 {
		t.Errorf("results = %+v", got.page)
	}
}

func TestDescribeHistoryItem(t *testing.T) {
	names := func(id string) string {
		if id == "3" {
			return "Crime"
		}
		return ""
	}
	tests := []struct {
		item domain.HistoryItem
		want string
	}{
		{domain.HistoryItem{DisplayText: "Heat (1995)", Query: "heat"}, "Heat (1995)"},
		{domain.HistoryItem{Query: "heat"}, `"heat"`},
		{domain.HistoryItem{Query: "heat", Genres: []string{"3", "9"}, YearFrom: "1990", YearTo: "2000"}, `"heat", genres: Crime, 9, years: 1990-2000`},
		{domain.HistoryItem{YearTo: "2000"}, "years: 2000"},
		{domain.HistoryItem{}, "Search"},
	}
	for _, tt := range tests {
		if got := DescribeHistoryItem(tt.item, names); got != tt.want {
			t.Errorf("DescribeHistoryItem(%+v) = %q, want %q", tt.item, got, tt.want)
		}
	}
}
