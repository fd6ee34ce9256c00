package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcdole/kinoteka/internal/domain"
)

// MetaClient implements domain.MetaRepository over the /meta endpoints
type MetaClient struct {
	transport *Transport
}

// NewMetaClient creates a metadata client sharing the given transport
func NewMetaClient(t *Transport) *MetaClient {
	return &MetaClient{transport: t}
}

// Recent returns the latest distinct searches
func (c *MetaClient) Recent(ctx context.Context, limit int) ([]domain.HistoryItem, error) {
	return c.History(ctx, domain.HistoryRecent, limit)
}

// Popular returns the most frequent searches with their counts
func (c *MetaClient) Popular(ctx context.Context, limit int) ([]domain.HistoryItem, error) {
	return c.History(ctx, domain.HistoryPopular, limit)
}

// Unique returns distinct searches
func (c *MetaClient) Unique(ctx context.Context, limit int) ([]domain.HistoryItem, error) {
	return c.History(ctx, domain.HistoryUnique, limit)
}

// History returns one of the history feeds
func (c *MetaClient) History(ctx context.Context, kind domain.HistoryKind, limit int) ([]domain.HistoryItem, error) {
	var path string
	switch kind {
	case domain.HistoryRecent:
		path = "/meta/recent"
	case domain.HistoryPopular:
		path = "/meta/popular"
	case domain.HistoryUnique:
		path = "/meta/unique"
	default:
		return nil, fmt.Errorf("unknown history feed: %d", kind)
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var env envelope[historyDTO]
	if err := c.transport.getJSON(ctx, kind.String(), path, q, &env); err != nil {
		return nil, err
	}
	return mapHistory(env.Items), nil
}

// YearBounds returns the catalog's release year range
func (c *MetaClient) YearBounds(ctx context.Context) (domain.YearRange, error) {
	var dto yearRangeDTO
	if err := c.transport.getJSON(ctx, "year_range_bounds", "/meta/year-range", nil, &dto); err != nil {
		return domain.YearRange{}, err
	}
	r := domain.YearRange{Min: dto.MinYear.Int(), Max: dto.MaxYear.Int()}
	if r.Min == 0 || r.Max == 0 {
		return domain.YearRange{}, fmt.Errorf("%w: missing year bounds", domain.ErrDecode)
	}
	return r, nil
}

// SaveSearch records a search event
func (c *MetaClient) SaveSearch(ctx context.Context, event domain.SearchEvent) error {
	body := searchEventDTO{
		Query:    event.Query,
		YearFrom: event.YearFrom,
		YearTo:   event.YearTo,
		Genres:   event.Genres,
	}
	if body.Genres == nil {
		body.Genres = []string{}
	}
	if !event.Timestamp.IsZero() {
		body.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return c.transport.postJSON(ctx, "save_search", "/meta/search", body)
}
