package domain

import (
	"fmt"
	"strings"
)

// NoPosterURL is the placeholder image served by the backend for films without a poster
const NoPosterURL = "/static/images/no-poster.svg"

// Movie is a single film as shown on a card
type Movie struct {
	ID        string   // Backend film identifier
	Title     string   // Display title
	Year      int      // Release year (0 if unknown)
	PosterURL string   // Poster image, NoPosterURL when missing
	Genres    []string // Genre names
}

// YearLabel returns the release year or "N/A"
func (m Movie) YearLabel() string {
	if m.Year <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", m.Year)
}

// GenreLabel joins genres for display
func (m Movie) GenreLabel() string {
	return strings.Join(m.Genres, ", ")
}

// HasPoster reports whether the movie has a real poster
func (m Movie) HasPoster() bool {
	return m.PosterURL != "" && m.PosterURL != NoPosterURL
}

// DetailPath returns the backend path of the movie's detail page
func (m Movie) DetailPath() string {
	return "/movie/" + m.ID
}

// Genre is a film category
type Genre struct {
	ID   string
	Name string
}

// YearRange holds the release year bounds known to the backend
type YearRange struct {
	Min int
	Max int
}

// Page is one page of a paginated listing
type Page struct {
	Items []Movie
	Total int
}
