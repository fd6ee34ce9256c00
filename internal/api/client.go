package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mmcdole/kinoteka/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Kinoteka/1.0"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "kinoteka_api_requests_total",
	Help: "Catalog API requests by endpoint and outcome.",
}, []string{"endpoint", "outcome"})

// Transport performs JSON requests against the catalog backend.
// It is shared by FilmsClient and MetaClient and holds no request state.
type Transport struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTransport creates a transport for the backend at baseURL
func NewTransport(baseURL string, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// BaseURL returns the backend root without a trailing slash
func (t *Transport) BaseURL() string {
	return t.baseURL
}

// getJSON issues a GET and decodes the body into out
func (t *Transport) getJSON(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	body, err := t.doRequest(ctx, endpoint, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return t.decode(endpoint, body, out)
}

// postJSON issues a POST with a JSON body, discarding the response body
func (t *Transport) postJSON(ctx context.Context, endpoint, path string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	_, err = t.doRequest(ctx, endpoint, http.MethodPost, path, nil, data)
	return err
}

// doRequest performs an HTTP request and returns the body of a 2xx response
func (t *Transport) doRequest(ctx context.Context, endpoint, method, path string, query url.Values, payload []byte) ([]byte, error) {
	reqURL := t.baseURL + path
	if len(query) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	t.logger.Debug("catalog request", "method", method, "url", reqURL, "request_id", requestID)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			requestsTotal.WithLabelValues(endpoint, "canceled").Inc()
			return nil, ctxErr
		}
		requestsTotal.WithLabelValues(endpoint, "offline").Inc()
		t.logger.Error("catalog request failed", "url", reqURL, "request_id", requestID, "error", err)
		return nil, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			requestsTotal.WithLabelValues(endpoint, "canceled").Inc()
			return nil, ctxErr
		}
		requestsTotal.WithLabelValues(endpoint, "offline").Inc()
		return nil, fmt.Errorf("failed to read response: %w", errors.Join(domain.ErrServerOffline, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		requestsTotal.WithLabelValues(endpoint, "status").Inc()
		t.logger.Error("catalog request error", "status", resp.StatusCode, "request_id", requestID, "body", truncate(string(body), 200))
		return nil, fmt.Errorf("%w: status %d", domain.ErrRequestFailed, resp.StatusCode)
	}

	requestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return body, nil
}

func (t *Transport) decode(endpoint string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		t.logger.Error("JSON parse error", "endpoint", endpoint, "error", err, "bodyLen", len(body))
		return fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
