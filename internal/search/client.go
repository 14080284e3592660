// Package search queries the stream proxy's catalog search.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/llehouerou/aurora/internal/playlist"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 4 << 20
)

// ErrEmptyQuery is returned for a blank query.
var ErrEmptyQuery = errors.New("empty search query")

// result is one entry of the proxy's search response.
type result struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Artist    string  `json:"artist"`
	Thumbnail string  `json:"thumbnail"`
	URL       string  `json:"url"`
	Duration  float64 `json:"duration"` // seconds
}

func (r result) track() playlist.Track {
	t := playlist.Track{
		ID:            r.ID,
		Title:         r.Title,
		Artist:        r.Artist,
		CoverURL:      r.Thumbnail,
		SourceLocator: r.URL,
	}
	if r.Duration > 0 && !math.IsInf(r.Duration, 0) {
		t.Duration = time.Duration(r.Duration * float64(time.Second))
	}
	return t
}

// Client searches the proxy at a base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithRateLimit caps requests per second. Zero or less disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(cl *Client) {
		if perSecond <= 0 {
			cl.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		cl.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// New creates a search client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(2), 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns tracks matching query in the proxy's ranking order.
// Entries without an ID or locator are skipped, as are repeated IDs.
func (c *Client) Search(ctx context.Context, query string) ([]playlist.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/api/search?" + url.Values{"q": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var results []result
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	tracks := make([]playlist.Track, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		if r.ID == "" || r.URL == "" || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		tracks = append(tracks, r.track())
	}
	return tracks, nil
}
