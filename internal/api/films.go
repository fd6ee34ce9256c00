package api

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcdole/kinoteka/internal/domain"
)

// MinCatalogYear is the lower year bound used by genre-only searches
const MinCatalogYear = 1900

// FilmsClient implements domain.FilmsRepository over the /films endpoints
type FilmsClient struct {
	transport *Transport
	now       func() time.Time
}

// NewFilmsClient creates a films client sharing the given transport
func NewFilmsClient(t *Transport) *FilmsClient {
	return &FilmsClient{transport: t, now: time.Now}
}

// Genres returns all genres
func (c *FilmsClient) Genres(ctx context.Context) ([]domain.Genre, error) {
	var env envelope[genreDTO]
	if err := c.transport.getJSON(ctx, "genres", "/films/genres", nil, &env); err != nil {
		return nil, err
	}
	return mapGenres(env.Items), nil
}

// NewMovies returns the default listing
func (c *FilmsClient) NewMovies(ctx context.Context, limit, offset int) (domain.Page, error) {
	return c.page(ctx, "new", "/films/search/new", pageQuery(limit, offset))
}

// Keyword searches by title across all genres
func (c *FilmsClient) Keyword(ctx context.Context, query string, limit, offset int) (domain.Page, error) {
	q := pageQuery(limit, offset)
	q.Set("query", query)
	return c.page(ctx, "keyword", "/films/search/keyword", q)
}

// YearRange returns movies released within [from, to], narrowed by genre when genreID is set
func (c *FilmsClient) YearRange(ctx context.Context, from, to, genreID string, limit, offset int) (domain.Page, error) {
	q := pageQuery(limit, offset)
	q.Set("year_from", from)
	q.Set("year_to", to)
	if genreID != "" {
		q.Set("category_id", genreID)
	}
	return c.page(ctx, "year_range", "/films/search/year_range", q)
}

// ByGenre returns movies of one genre released between 1900 and the current year
func (c *FilmsClient) ByGenre(ctx context.Context, genreID string, limit, offset int) (domain.Page, error) {
	q := pageQuery(limit, offset)
	q.Set("category_id", genreID)
	q.Set("year_from", strconv.Itoa(MinCatalogYear))
	q.Set("year_to", strconv.Itoa(c.now().Year()))
	return c.page(ctx, "genre", "/films/search/genres", q)
}

func (c *FilmsClient) page(ctx context.Context, endpoint, path string, query url.Values) (domain.Page, error) {
	var env envelope[filmDTO]
	if err := c.transport.getJSON(ctx, endpoint, path, query, &env); err != nil {
		return domain.Page{}, err
	}
	return domain.Page{Items: mapMovies(env.Items), Total: env.total()}, nil
}

func pageQuery(limit, offset int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q
}
