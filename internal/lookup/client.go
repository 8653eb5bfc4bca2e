// Package lookup fetches album and artist descriptions from Wikipedia and
// discographies from Discogs.
//
// Responses are passed through mostly untouched: the package finds the right
// page or artist and hands back its content. Requests are throttled per
// service, results are cached for a while, and identical concurrent lookups
// share one request.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

var (
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrDisabled is returned by a lookup that is missing its credentials.
	ErrDisabled = errors.New("lookup disabled")
)

// NotFoundError reports a search with no usable hit. SearchURL points at a
// page where the user can search by hand.
type NotFoundError struct {
	Service   string
	Query     string
	SearchURL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q not found", e.Service, e.Query)
}

// Is makes errors.Is(err, ErrNotFound) true.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// maxBody bounds any single response.
const maxBody = 10 << 20

// Options configures a Client. Zero values get defaults.
type Options struct {
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	CacheTTL          time.Duration
	HTTPClient        *http.Client
}

// Client performs throttled, cached JSON GETs.
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	cache      *cache.Cache
	group      singleflight.Group
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = "RecordViewer/1.0"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		httpClient: hc,
		userAgent:  opts.UserAgent,
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		cache:      cache.New(opts.CacheTTL, 2*opts.CacheTTL),
	}
}

// getJSON waits for the rate limiter, GETs url and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// cached returns the cached value for key or computes it once, sharing the
// work with concurrent callers. Errors are not cached.
func cached[T any](c *Client, key string, fetch func() (T, error)) (T, error) {
	if v, ok := c.cache.Get(key); ok {
		return v.(T), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		res, err := fetch()
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, res, cache.DefaultExpiration)
		return res, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// bestMatch returns the index of the candidate most similar to query, or -1
// when none reaches threshold. Ties keep the earlier (higher ranked) hit.
func bestMatch(query string, candidates []string, threshold float64) int {
	jw := metrics.NewJaroWinkler()
	jw.CaseSensitive = false

	best, bestScore := -1, 0.0
	q := normalize(query)
	for i, cand := range candidates {
		score := strutil.Similarity(q, normalize(cand), jw)
		if score > bestScore && score >= threshold {
			best, bestScore = i, score
		}
	}
	return best
}

// normalize drops a trailing parenthetical qualifier ("Kind of Blue (album)").
func normalize(s string) string {
	if idx := strings.IndexAny(s, "(["); idx > 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
