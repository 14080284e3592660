// Package resolver turns source locators into playable stream URLs through
// the stream proxy service.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Mode selects how the proxy hands out streams.
type Mode string

const (
	// ModeJSON asks the proxy for a direct stream URL.
	ModeJSON Mode = "json"
	// ModeProxy streams the audio through the proxy itself.
	ModeProxy Mode = "proxy"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 1 << 20
)

var (
	ErrEmptyLocator = errors.New("empty source locator")
	ErrNoStreamURL  = errors.New("no stream url in response")
)

// Client resolves locators against a proxy base URL.
type Client struct {
	baseURL    string
	mode       Mode
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithMode sets the resolution mode. Unknown modes fall back to ModeJSON.
func WithMode(m Mode) Option {
	return func(cl *Client) {
		if m == ModeProxy {
			cl.mode = ModeProxy
			return
		}
		cl.mode = ModeJSON
	}
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

// New creates a resolver client for the proxy at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		mode:       ModeJSON,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(2), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode returns the configured mode.
func (c *Client) Mode() Mode {
	return c.mode
}

// Resolve returns a stream URL for locator.
func (c *Client) Resolve(ctx context.Context, locator string) (string, error) {
	if locator == "" {
		return "", ErrEmptyLocator
	}
	if c.mode == ModeProxy {
		return c.endpoint("/api/stream", locator), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/resolve", locator), http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolve request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.URL == "" {
		return "", ErrNoStreamURL
	}
	return out.URL, nil
}

func (c *Client) endpoint(path, locator string) string {
	return c.baseURL + path + "?" + url.Values{"url": {locator}}.Encode()
}

// StatusError is a non-200 answer from the proxy.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("proxy returned %d", e.Code)
	}
	return fmt.Sprintf("proxy returned %d: %s", e.Code, e.Body)
}
