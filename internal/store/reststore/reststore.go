// Package reststore keeps likes behind a PostgREST endpoint such as
// Supabase's REST API.
package reststore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/llehouerou/aurora/internal/store"
)

var (
	_ store.Store         = (*Client)(nil)
	_ store.UserRegistrar = (*Client)(nil)
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 8 << 20

	likesTable = "liked_songs"
	usersTable = "users"
)

// row is the liked_songs table layout.
type row struct {
	UserID        string    `json:"user_id"`
	TrackID       string    `json:"track_id"`
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	CoverURL      string    `json:"cover_url"`
	SourceLocator string    `json:"source_locator"`
	DurationMS    int64     `json:"duration_ms"`
	LikedAt       time.Time `json:"liked_at"`
}

func toRow(l store.Like) row {
	return row{
		UserID:        l.UserID,
		TrackID:       l.TrackID,
		Title:         l.Title,
		Artist:        l.Artist,
		CoverURL:      l.CoverURL,
		SourceLocator: l.SourceLocator,
		DurationMS:    l.Duration.Milliseconds(),
		LikedAt:       l.LikedAt.UTC(),
	}
}

func (r row) like() store.Like {
	return store.Like{
		UserID:        r.UserID,
		TrackID:       r.TrackID,
		Title:         r.Title,
		Artist:        r.Artist,
		CoverURL:      r.CoverURL,
		SourceLocator: r.SourceLocator,
		Duration:      time.Duration(r.DurationMS) * time.Millisecond,
		LikedAt:       r.LikedAt,
	}
}

type userRow struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	LastSeen  time.Time `json:"last_seen"`
}

// Client talks to a PostgREST base URL (for Supabase, https://<ref>.supabase.co).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// New creates a REST store client. apiKey is sent both as the apikey header
// and as a bearer token.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Upsert(ctx context.Context, like store.Like) error {
	if err := like.Validate(); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPost, likesTable, nil, []row{toRow(like)},
		"resolution=merge-duplicates,return=minimal")
	if err != nil {
		return fmt.Errorf("upsert like: %w", err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, userID, trackID string) error {
	q := url.Values{
		"user_id":  {"eq." + userID},
		"track_id": {"eq." + trackID},
	}
	if _, err := c.do(ctx, http.MethodDelete, likesTable, q, nil, "return=minimal"); err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return nil
}

func (c *Client) ListByUser(ctx context.Context, userID string) ([]store.Like, error) {
	q := url.Values{
		"user_id": {"eq." + userID},
		"order":   {"liked_at.desc,track_id.asc"},
		"select":  {"*"},
	}
	body, err := c.do(ctx, http.MethodGet, likesTable, q, nil, "")
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}

	var rows []row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode likes: %w", err)
	}
	likes := make([]store.Like, 0, len(rows))
	for _, r := range rows {
		likes = append(likes, r.like())
	}
	return likes, nil
}

func (c *Client) RegisterUser(ctx context.Context, u store.User) error {
	payload := []userRow{{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL, LastSeen: u.LastSeen.UTC()}}
	if _, err := c.do(ctx, http.MethodPost, usersTable, nil, payload,
		"resolution=merge-duplicates,return=minimal"); err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, table string, q url.Values, payload any, prefer string) ([]byte, error) {
	endpoint := c.baseURL + "/rest/v1/" + table
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

// StatusError is a non-2xx answer from the REST endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("store returned %d", e.Code)
	}
	return fmt.Sprintf("store returned %d: %s", e.Code, e.Body)
}
