package api

import (
	"errors"
	"testing"

	"github.com/mmcdole/kinoteka/internal/domain"
)

func TestResolveGenre(t *testing.T) {
	genres := []domain.Genre{
		{ID: "1", Name: "Action"},
		{ID: "2", Name: "Documentary"},
		{ID: "3", Name: "Drama"},
	}

	tests := []struct {
		input  string
		wantID string
	}{
		{"2", "2"},
		{"drama", "3"},
		{"DRAMA", "3"},
		{"docu", "2"},
		{"actn", "1"},
	}
	for _, tt := range tests {
		got, err := ResolveGenre(genres, tt.input)
		if err != nil {
			t.Errorf("ResolveGenre(%q): %v", tt.input, err)
			continue
		}
		if got.ID != tt.wantID {
			t.Errorf("ResolveGenre(%q) = %s, want %s", tt.input, got.ID, tt.wantID)
		}
	}

	for _, input := range []string{"", "western"} {
		if _, err := ResolveGenre(genres, input); !errors.Is(err, domain.ErrGenreNotFound) {
			t.Errorf("ResolveGenre(%q) err = %v, want ErrGenreNotFound", input, err)
		}
	}
}
