// Package omdb is the client for the OMDb title lookup endpoint.
package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lepinkainen/reelbox/internal/cache"
	"github.com/lepinkainen/reelbox/internal/config"
	"github.com/lepinkainen/reelbox/internal/errors"
	"github.com/lepinkainen/reelbox/internal/movie"
	"github.com/lepinkainen/reelbox/internal/ratelimit"
)

const requestLimitReached = "Request limit reached!"

// Client looks movies up by title and optional year.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	useCache   bool

	rateLimitReached atomic.Bool
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the OMDb endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRequestsPerSecond replaces the limiter with one allowing rps requests per second.
func WithRequestsPerSecond(rps int) Option {
	return func(c *Client) { c.limiter = ratelimit.New("OMDB", rps) }
}

// WithCache enables the SQLite response cache.
func WithCache(enabled bool) Option {
	return func(c *Client) { c.useCache = enabled }
}

// NewClient creates a client for apiKey with default settings.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    "https://www.omdbapi.com/",
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		limiter:    ratelimit.New("OMDB", 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig builds a client from the global config. Extra options
// are applied last.
func NewClientFromConfig(opts ...Option) (*Client, error) {
	if config.OMDBAPIKey == "" {
		return nil, fmt.Errorf("OMDB API key not found in config (set omdb.api_key, OMDB_API_KEY or --api-key)")
	}
	base := []Option{
		WithBaseURL(config.OMDBBaseURL),
		WithRequestsPerSecond(config.OMDBRequestsPerSecond),
	}
	if config.HTTPTimeout > 0 {
		base = append(base, WithHTTPClient(&http.Client{Timeout: config.HTTPTimeout}))
	}
	return NewClient(config.OMDBAPIKey, append(base, opts...)...), nil
}

// RequestsAllowed returns false once OMDb has reported its request limit.
func (c *Client) RequestsAllowed() bool {
	return !c.rateLimitReached.Load()
}

func (c *Client) markRateLimitReached() {
	if c.rateLimitReached.CompareAndSwap(false, true) {
		slog.Warn("OMDB API rate limit reached; skipping further OMDB requests for this run")
	}
}

// BuildURL returns the lookup URL: ?t=<title>&apikey=<key>[&y=<year>].
func (c *Client) BuildURL(title, year string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid OMDB base URL %q: %w", c.baseURL, err)
	}
	if u.Path == "" {
		u.Path = "/"
	}

	query := "t=" + url.QueryEscape(title) + "&apikey=" + url.QueryEscape(c.apiKey)
	if year = strings.TrimSpace(year); year != "" {
		query += "&y=" + url.QueryEscape(year)
	}
	u.RawQuery = query
	return u.String(), nil
}

// FetchByTitle looks a movie up by title and optional year.
// A payload without a Title attribute is reported as (nil, nil).
func (c *Client) FetchByTitle(ctx context.Context, title, year string) (movie.Movie, error) {
	if !c.RequestsAllowed() {
		return nil, errors.NewRateLimitError("OMDB API request limit reached")
	}

	var (
		result cachedLookup
		err    error
	)
	if c.useCache {
		result, _, err = cache.GetOrFetchWithTTL(cache.OMDBTable, CacheKey(title, year),
			func() (cachedLookup, error) { return c.lookup(ctx, title, year) },
			cache.SelectNegativeCacheTTL(func(r cachedLookup) bool { return r.NotFound }))
	} else {
		result, err = c.lookup(ctx, title, year)
	}
	if err != nil {
		if errors.IsRateLimitError(err) {
			c.markRateLimitReached()
		}
		return nil, err
	}
	if result.NotFound {
		return nil, nil
	}
	return result.Movie, nil
}

// CacheKey normalises a title/year pair for the response cache.
func CacheKey(title, year string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "|" + strings.TrimSpace(year)
}

type cachedLookup struct {
	Movie    movie.Movie `json:"movie,omitempty"`
	NotFound bool        `json:"not_found"`
}

func (c *Client) lookup(ctx context.Context, title, year string) (cachedLookup, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return cachedLookup{}, err
	}

	reqURL, err := c.BuildURL(title, year)
	if err != nil {
		return cachedLookup{}, err
	}

	slog.Debug("Fetching OMDB data by title", "title", title, "year", year)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return cachedLookup{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return cachedLookup{}, fmt.Errorf("failed to fetch data: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return cachedLookup{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return cachedLookup{}, statusError(resp, body, title)
	}

	var payload movie.Movie
	if err := json.Unmarshal(body, &payload); err != nil {
		return cachedLookup{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if payload.String("Error") == requestLimitReached {
		return cachedLookup{}, errors.NewRateLimitError("OMDB API request limit reached")
	}
	if !payload.HasTitle() {
		slog.Debug("Movie not found in OMDB", "title", title, "year", year, "error", payload.String("Error"))
		return cachedLookup{NotFound: true}, nil
	}

	return cachedLookup{Movie: payload}, nil
}

func statusError(resp *http.Response, body []byte, title string) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return errors.NewRateLimitErrorWithRetry("OMDB API request limit reached", time.Duration(retryAfter)*time.Second)
	}

	var errorResp struct {
		Response string `json:"Response"`
		Error    string `json:"Error"`
	}
	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error != "" {
		if errorResp.Error == requestLimitReached {
			return errors.NewRateLimitError("OMDB API request limit reached")
		}
		slog.Warn("OMDB API error", "error", errorResp.Error)
		return fmt.Errorf("OMDB API returned status %d for title %q: %s", resp.StatusCode, title, errorResp.Error)
	}
	return fmt.Errorf("OMDB API returned non-200 status code: %d for title: %s", resp.StatusCode, title)
}
