package api

import (
	"encoding/json"
	"testing"

	"github.com/mmcdole/kinoteka/internal/domain"
)

func TestMapMovie_Variants(t *testing.T) {
	tests := []struct {
		name string
		json string
		want domain.Movie
	}{
		{
			name: "primary fields",
			json: `{"film_id": 12, "title": "Heat", "release_year": 1995, "poster_url": "/p.jpg", "genres": "Action, Crime"}`,
			want: domain.Movie{ID: "12", Title: "Heat", Year: 1995, PosterURL: "/p.jpg", Genres: []string{"Action", "Crime"}},
		},
		{
			name: "alternate fields",
			json: `{"id": "7", "title": "Alien", "year": "1979", "poster": "/a.jpg", "genres": ["Horror", 5]}`,
			want: domain.Movie{ID: "7", Title: "Alien", Year: 1979, PosterURL: "/a.jpg", Genres: []string{"Horror", "5"}},
		},
		{
			name: "missing values",
			json: `{"id": 3, "title": "  ", "release_year": null, "genres": null}`,
			want: domain.Movie{ID: "3", Title: "Unknown Title", PosterURL: domain.NoPosterURL},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dto filmDTO
			if err := json.Unmarshal([]byte(tt.json), &dto); err != nil {
				t.Fatal(err)
			}
			got := mapMovie(dto)
			if got.ID != tt.want.ID || got.Title != tt.want.Title || got.Year != tt.want.Year || got.PosterURL != tt.want.PosterURL {
				t.Errorf("mapMovie = %+v, want %+v", got, tt.want)
			}
			if len(got.Genres) != len(tt.want.Genres) {
				t.Fatalf("Genres = %v, want %v", got.Genres, tt.want.Genres)
			}
			for i := range got.Genres {
				if got.Genres[i] != tt.want.Genres[i] {
					t.Errorf("Genres[%d] = %q, want %q", i, got.Genres[i], tt.want.Genres[i])
				}
			}
		})
	}
}

func TestEnvelopeTotal(t *testing.T) {
	tests := []struct {
		json string
		want int
	}{
		{`{"items": [{}, {}], "total": 40}`, 40},
		{`{"items": [{}, {}], "count": 2}`, 2},
		{`{"items": [{}, {}, {}]}`, 3},
		{`{"items": [], "total": 0, "count": 9}`, 0},
	}
	for _, tt := range tests {
		var env envelope[filmDTO]
		if err := json.Unmarshal([]byte(tt.json), &env); err != nil {
			t.Fatal(err)
		}
		if got := env.total(); got != tt.want {
			t.Errorf("total(%s) = %d, want %d", tt.json, got, tt.want)
		}
	}
}
