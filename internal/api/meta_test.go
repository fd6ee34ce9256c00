package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/mmcdole/kinoteka/internal/domain"
)

func TestMetaClient_YearBounds(t *testing.T) {
	backend, _, meta := newClients(t)
	backend.MinYear = 1921
	backend.MaxYear = 2023

	r, err := meta.YearBounds(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if r.Min != 1921 || r.Max != 2023 {
		t.Errorf("YearBounds = %+v", r)
	}
}

func TestMetaClient_History(t *testing.T) {
	backend, _, meta := newClients(t)
	backend.History["recent"] = []map[string]any{
		{
			"_id":         "a1",
			"search_type": "keyword",
			"params":      map[string]any{"query": "matrix", "year_from": 1990, "year_to": "2000"},
			"query":       "matrix",
			"timestamp":   "2024-05-01T12:00:00.123456+00:00",
		},
		{
			"search_type": "genre",
			"params":      map[string]any{"category_id": 7},
			"query":       "genre:7",
			"timestamp":   "2024-05-01T11:00:00",
		},
		{
			"search_type": "year",
			"params":      map[string]any{"year": 1984},
		},
	}
	backend.History["popular"] = []map[string]any{
		{"query": "alien", "count": 4, "genres": []any{"2", 3}, "year_from": nil, "latest_search": "2024-04-30T09:30:00Z"},
	}

	recent, err := meta.Recent(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 {
		t.Fatalf("len = %d, want 3", len(recent))
	}

	kw := recent[0]
	if kw.Query != "matrix" || kw.YearFrom != "1990" || kw.YearTo != "2000" || kw.Kind != domain.SearchKindKeyword {
		t.Errorf("keyword item = %+v", kw)
	}
	if want := time.Date(2024, 5, 1, 12, 0, 0, 123456000, time.UTC); !kw.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", kw.Timestamp, want)
	}

	genre := recent[1]
	if genre.Query != "" {
		t.Errorf("genre item query = %q, want empty", genre.Query)
	}
	if len(genre.Genres) != 1 || genre.Genres[0] != "7" {
		t.Errorf("genre item genres = %v", genre.Genres)
	}
	if genre.Timestamp.IsZero() {
		t.Error("naive timestamp not parsed")
	}

	year := recent[2]
	if year.YearFrom != "1984" || year.YearTo != "1984" || year.Kind != domain.SearchKindYear {
		t.Errorf("year item = %+v", year)
	}

	popular, err := meta.Popular(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	p := popular[0]
	if p.Query != "alien" || p.Count != 4 || p.Kind != domain.SearchKindKeyword {
		t.Errorf("popular item = %+v", p)
	}
	if len(p.Genres) != 2 || p.Genres[1] != "3" {
		t.Errorf("popular genres = %v", p.Genres)
	}
	if p.YearFrom != "" {
		t.Errorf("YearFrom = %q, want empty", p.YearFrom)
	}
	if p.Timestamp.IsZero() {
		t.Error("latest_search not used as timestamp")
	}
}

func TestMetaClient_HistoryLimit(t *testing.T) {
	backend, _, meta := newClients(t)
	for i := 0; i < 8; i++ {
		backend.History["unique"] = append(backend.History["unique"], map[string]any{"query": "q"})
	}

	items, err := meta.Unique(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 5 {
		t.Errorf("len = %d, want 5", len(items))
	}
	if got := backend.Queries()[0]; got != "/meta/unique?limit=5" {
		t.Errorf("request = %q", got)
	}
}

func TestMetaClient_SaveSearch(t *testing.T) {
	backend, _, meta := newClients(t)
	from := 1990

	err := meta.SaveSearch(context.Background(), domain.SearchEvent{
		Query:     "heat",
		YearFrom:  &from,
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}

	saved := backend.Saved()
	if len(saved) != 1 {
		t.Fatalf("saved %d events, want 1", len(saved))
	}
	body := saved[0]
	if body["query"] != "heat" {
		t.Errorf("query = %v", body["query"])
	}
	if body["year_from"] != float64(1990) {
		t.Errorf("year_from = %v", body["year_from"])
	}
	if _, ok := body["year_to"]; ok {
		t.Error("year_to sent although unset")
	}
	if genres, ok := body["genres"].([]any); !ok || len(genres) != 0 {
		t.Errorf("genres = %v, want []", body["genres"])
	}
	if body["timestamp"] != "2024-01-02T03:04:05Z" {
		t.Errorf("timestamp = %v", body["timestamp"])
	}
}

func TestMetaClient_SaveSearchFailure(t *testing.T) {
	backend, _, meta := newClients(t)
	backend.Fail("/meta/search", http.StatusInternalServerError)

	err := meta.SaveSearch(context.Background(), domain.SearchEvent{Query: "x"})
	if !errors.Is(err, domain.ErrRequestFailed) {
		t.Errorf("err = %v, want ErrRequestFailed", err)
	}
}
