// Package artwork derives an accent color from a track's cover image.
package artwork

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF covers
	_ "image/jpeg" // JPEG covers
	_ "image/png"  // PNG covers
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
)

const (
	defaultTimeout = 10 * time.Second
	maxImageSize   = 10 << 20
	sampleSize     = 32
	hueBuckets     = 12
)

// Fallback is used when a cover has no usable color.
var Fallback = colorful.Color{R: 0.07, G: 0.07, B: 0.07}

var ErrNoCover = errors.New("no cover url")

// Client fetches covers and caches one accent per URL.
type Client struct {
	httpClient *http.Client

	mu    sync.Mutex
	cache map[string]colorful.Color
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		cache:      make(map[string]colorful.Color),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Accent returns the dominant color of the image at url. Failed lookups are
// not cached so a later call can retry.
func (c *Client) Accent(ctx context.Context, url string) (colorful.Color, error) {
	if url == "" {
		return Fallback, ErrNoCover
	}

	c.mu.Lock()
	if col, ok := c.cache[url]; ok {
		c.mu.Unlock()
		return col, nil
	}
	c.mu.Unlock()

	img, err := c.fetch(ctx, url)
	if err != nil {
		return Fallback, err
	}
	col := Dominant(img)

	c.mu.Lock()
	c.cache[url] = col
	c.mu.Unlock()
	return col, nil
}

func (c *Client) fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch cover: status %d", resp.StatusCode)
	}
	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("decode cover: %w", err)
	}
	return img, nil
}

// Dominant picks the most common saturated hue of img and returns the mean
// color of that hue, darkened for use as a background. Grey images yield
// Fallback.
func Dominant(img image.Image) colorful.Color {
	small := resize.Thumbnail(sampleSize, sampleSize, img, resize.Bilinear)
	b := small.Bounds()

	type bucket struct {
		n       int
		r, g, b float64
	}
	var buckets [hueBuckets]bucket

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			col, ok := colorful.MakeColor(small.At(x, y))
			if !ok {
				continue
			}
			h, s, v := col.Hsv()
			if s < 0.25 || v < 0.15 {
				continue
			}
			i := int(h/360*hueBuckets) % hueBuckets
			buckets[i].n++
			buckets[i].r += col.R
			buckets[i].g += col.G
			buckets[i].b += col.B
		}
	}

	best := -1
	for i, bk := range buckets {
		if bk.n > 0 && (best < 0 || bk.n > buckets[best].n) {
			best = i
		}
	}
	if best < 0 {
		return Fallback
	}

	bk := buckets[best]
	n := float64(bk.n)
	mean := colorful.Color{R: bk.r / n, G: bk.g / n, B: bk.b / n}
	return mean.BlendLab(Fallback, 0.45).Clamped()
}
