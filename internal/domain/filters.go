package domain

// Mode is the listing currently shown
type Mode int

const (
	ModeNew Mode = iota
	ModeSearch
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case ModeNew:
		return "NEW"
	case ModeSearch:
		return "SEARCH"
	default:
		return "UNKNOWN"
	}
}

// DefaultPageLimit is the fixed number of movies per page
const DefaultPageLimit = 10

// SearchFilters are the values of the search form.
// Years and genre are kept as entered; empty means unset.
type SearchFilters struct {
	Query    string `json:"query"`
	YearFrom string `json:"yearFrom"`
	YearTo   string `json:"yearTo"`
	GenreID  string `json:"genreId"`
}

// Active reports whether any filter is set
func (f SearchFilters) Active() bool {
	return f.Query != "" || f.YearFrom != "" || f.YearTo != "" || f.GenreID != ""
}

// PageState tracks pagination for the current listing
type PageState struct {
	CurrentPage  int
	Limit        int
	Mode         Mode
	CurrentTotal int
}

// Offset returns the item offset of the current page
func (p PageState) Offset() int {
	return (p.CurrentPage - 1) * p.Limit
}

// TotalPages returns ceil(CurrentTotal/Limit)
func (p PageState) TotalPages() int {
	return TotalPages(p.CurrentTotal, p.Limit)
}

// TotalPages returns the number of pages needed for total items
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// ResultPage is a rendered page of results handed to the view
type ResultPage struct {
	Items   []Movie
	Total   int
	Page    int
	Limit   int
	Mode    Mode
	Filters SearchFilters
	Header  string // Empty for the new movies listing
}
