package components

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/kinoteka/internal/domain"
	"github.com/mmcdole/kinoteka/internal/service"
)

func TestMovieLine(t *testing.T) {
	m := domain.Movie{ID: "7", Title: "Heat", Year: 1995, Genres: []string{"Crime", "Drama"}}
	got := MovieLine(m, "http://films.example")
	want := "Heat (1995) · Crime, Drama · http://films.example/movie/7"
	if got != want {
		t.Errorf("MovieLine = %q, want %q", got, want)
	}

	unknown := MovieLine(domain.Movie{ID: "8", Title: "Lost"}, "")
	if !strings.Contains(unknown, "(N/A)") {
		t.Errorf("MovieLine = %q, want N/A year", unknown)
	}
}

func TestMovieGrid_Move(t *testing.T) {
	g := NewMovieGrid()
	g.SetWidth(3 * 28)
	movies := make([]domain.Movie, 7)
	for i := range movies {
		movies[i] = domain.Movie{ID: fmt.Sprint(i), Title: fmt.Sprint("M", i)}
	}
	g.SetMovies(movies)

	if g.Columns() != 3 {
		t.Fatalf("Columns = %d, want 3", g.Columns())
	}
	g.Move(0, 1)
	if g.Cursor() != 3 {
		t.Errorf("after down cursor = %d, want 3", g.Cursor())
	}
	g.Move(1, 5)
	if g.Cursor() != 6 {
		t.Errorf("clamped cursor = %d, want 6", g.Cursor())
	}
	g.Move(-100, 0)
	if m, ok := g.Selected(); !ok || m.ID != "0" {
		t.Errorf("Selected = %+v, %v", m, ok)
	}
}

func TestErrorText(t *testing.T) {
	offline := fmt.Errorf("films: %w", domain.ErrServerOffline)
	if got := ErrorText(offline); !strings.Contains(got, "unreachable") {
		t.Errorf("ErrorText(offline) = %q", got)
	}
	if got := ErrorText(errors.New("boom")); got == "" {
		t.Error("ErrorText of a generic error is empty")
	}
}

func TestFilterForm_Values(t *testing.T) {
	f := NewFilterForm()
	f.SetBounds(domain.YearRange{Min: 1920, Max: 2024})
	f.SetValues(domain.SearchFilters{Query: " matrix ", YearFrom: "1990"}, "")
	f.SetGenre(domain.Genre{ID: "5", Name: "Drama"})

	got := f.Values()
	want := domain.SearchFilters{Query: "matrix", YearFrom: "1990", GenreID: "5"}
	if got != want {
		t.Errorf("Values = %+v, want %+v", got, want)
	}
	if f.inputs[FieldYearTo].Placeholder != "2024" {
		t.Errorf("year-to placeholder = %q", f.inputs[FieldYearTo].Placeholder)
	}
}

func TestFilterForm_FocusWraps(t *testing.T) {
	f := NewFilterForm()
	f.Focus(FieldGenre)
	f.Next()
	if f.FocusedField() != FieldQuery {
		t.Errorf("FocusedField = %d, want %d", f.FocusedField(), FieldQuery)
	}
	f.Prev()
	if f.FocusedField() != FieldGenre {
		t.Errorf("FocusedField = %d, want %d", f.FocusedField(), FieldGenre)
	}
}

func TestGenrePicker_Filter(t *testing.T) {
	p := NewGenrePicker()
	p.SetGenres([]domain.Genre{{ID: "1", Name: "Action"}, {ID: "2", Name: "Drama"}, {ID: "3", Name: "Documentary"}})
	p.Show()

	if g, ok := p.Selected(); !ok || g.ID != "" {
		t.Errorf("first entry = %+v, want any genre", g)
	}
	if len(p.Filtered()) != 4 {
		t.Errorf("unfiltered len = %d, want 4", len(p.Filtered()))
	}

	p.input.SetValue("doc")
	p.filter()
	if len(p.Filtered()) != 1 || p.Filtered()[0].ID != "3" {
		t.Errorf("filtered = %+v", p.Filtered())
	}
}

func TestTabAndPanelLayout(t *testing.T) {
	kinds := []domain.HistoryKind{domain.HistoryRecent, domain.HistoryPopular, domain.HistoryUnique}
	tabs := TabRects(kinds, 10, 0)

	if tabs[0].X != 10 || tabs[0].W != len("Recent")+2 {
		t.Errorf("tabs[0] = %+v", tabs[0])
	}
	if tabs[1].X != tabs[0].X+tabs[0].W+1 {
		t.Errorf("tabs[1] = %+v", tabs[1])
	}
	if !tabs[2].Contains(tabs[2].X, 0) || tabs[2].Contains(tabs[2].X, 1) {
		t.Error("tab hit test wrong")
	}

	panel := "xxxx\nxxxx"
	rects := PanelRects(tabs, []string{panel, panel, ""})
	if rects[0].Y != 1 || rects[0].H != 2 || rects[0].W != 4 {
		t.Errorf("rects[0] = %+v", rects[0])
	}
	if rects[1].X < rects[0].X+rects[0].W {
		t.Errorf("panels overlap: %+v %+v", rects[0], rects[1])
	}
	if rects[2] != (Rect{}) {
		t.Errorf("hidden panel rect = %+v", rects[2])
	}
}

func TestHistoryMeta(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	item := domain.HistoryItem{
		Query:     "matrix",
		Kind:      domain.SearchKindKeyword,
		Timestamp: now.Add(-3 * time.Minute),
		Count:     4,
	}

	got := HistoryMeta(domain.HistoryPopular, item, now)
	if got != "Search · 3 minutes ago · 4 searches" {
		t.Errorf("popular meta = %q", got)
	}
	if got := HistoryMeta(domain.HistoryRecent, item, now); strings.Contains(got, "searches") {
		t.Errorf("recent meta shows a count: %q", got)
	}
}

func TestRenderHistoryPanel(t *testing.T) {
	describe := func(item domain.HistoryItem) string { return service.DescribeHistoryItem(item, nil) }
	now := time.Now()

	if got := RenderHistoryPanel(service.PanelView{State: service.PanelHidden}, -1, describe, now); got != "" {
		t.Errorf("hidden panel rendered %q", got)
	}

	failed := RenderHistoryPanel(service.PanelView{Kind: domain.HistoryRecent, State: service.PanelFailed}, -1, describe, now)
	if !strings.Contains(failed, "retry") {
		t.Errorf("failed panel = %q", failed)
	}

	shown := RenderHistoryPanel(service.PanelView{
		Kind:  domain.HistoryUnique,
		State: service.PanelShown,
		Items: []domain.HistoryItem{{DisplayText: "Westerns of the 60s"}},
	}, 0, describe, now)
	if !strings.Contains(shown, "Westerns of the 60s") {
		t.Errorf("shown panel = %q", shown)
	}
}
