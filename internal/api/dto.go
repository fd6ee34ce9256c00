package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// flexString accepts a JSON string, number or null
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// Int returns the value as an integer, 0 when it is not numeric
func (f flexString) Int() int {
	n, err := strconv.Atoi(string(f))
	if err != nil {
		if fl, ferr := strconv.ParseFloat(string(f), 64); ferr == nil {
			return int(fl)
		}
		return 0
	}
	return n
}

// flexList accepts a JSON list of strings/numbers, a comma separated string, or null
type flexList []string

func (f *flexList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = nil
		return nil
	}
	if data[0] == '[' {
		var raw []flexString
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make([]string, 0, len(raw))
		for _, r := range raw {
			if r != "" {
				out = append(out, string(r))
			}
		}
		*f = out
		return nil
	}
	var single flexString
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*f = splitList(string(single))
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envelope is the paginated response wrapper of every list endpoint
type envelope[T any] struct {
	Items  []T  `json:"items"`
	Total  *int `json:"total,omitempty"`
	Count  *int `json:"count,omitempty"`
	Offset int  `json:"offset,omitempty"`
	Limit  int  `json:"limit,omitempty"`
}

// total falls back to count, then to the number of items
func (e envelope[T]) total() int {
	if e.Total != nil {
		return *e.Total
	}
	if e.Count != nil {
		return *e.Count
	}
	return len(e.Items)
}

// filmDTO is a film as sent by the /films endpoints.
// Several field names are in use depending on the endpoint.
type filmDTO struct {
	FilmID      flexString `json:"film_id"`
	ID          flexString `json:"id"`
	Title       string     `json:"title"`
	ReleaseYear flexString `json:"release_year"`
	Year        flexString `json:"year"`
	PosterURL   string     `json:"poster_url"`
	Poster      string     `json:"poster"`
	Genres      flexList   `json:"genres"`
}

// genreDTO is a film category
type genreDTO struct {
	CategoryID flexString `json:"category_id"`
	Name       string     `json:"name"`
}

// yearRangeDTO is the /meta/year-range response
type yearRangeDTO struct {
	MinYear flexString `json:"min_year"`
	MaxYear flexString `json:"max_year"`
}

// historyParamsDTO holds the structured search parameters of a logged search
type historyParamsDTO struct {
	Query      string     `json:"query"`
	CategoryID flexString `json:"category_id"`
	Year       flexString `json:"year"`
	YearFrom   flexString `json:"year_from"`
	YearTo     flexString `json:"year_to"`
	Genres     flexList   `json:"genres"`
}

// historyDTO is a logged search. The server returns either the structured
// shape (search_type + params) or the flat legacy shape.
type historyDTO struct {
	ID              flexString        `json:"_id"`
	Query           string            `json:"query"`
	DisplayText     string            `json:"display_text"`
	SearchType      string            `json:"search_type"`
	Params          *historyParamsDTO `json:"params"`
	YearFrom        flexString        `json:"year_from"`
	YearTo          flexString        `json:"year_to"`
	Genres          flexList          `json:"genres"`
	Count           flexString        `json:"count"`
	Timestamp       string            `json:"timestamp"`
	LatestSearch    string            `json:"latest_search"`
	LatestTimestamp string            `json:"latest_timestamp"`
}

// searchEventDTO is the body of POST /meta/search
type searchEventDTO struct {
	Query     string   `json:"query"`
	YearFrom  *int     `json:"year_from,omitempty"`
	YearTo    *int     `json:"year_to,omitempty"`
	Genres    []string `json:"genres"`
	Timestamp string   `json:"timestamp,omitempty"`
}
