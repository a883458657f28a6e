// Package feed fetches the raw catalog payload over HTTP.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultEndpoint is the public models.dev catalog.
const DefaultEndpoint = "https://models.dev/api.json"

// StatusError reports a non-success HTTP response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// Client performs the single catalog GET, optionally backed by a FileCache.
type Client struct {
	endpoint  string
	http      *http.Client
	cache     *FileCache
	noCache   bool
	userAgent string
	logger    *log.Logger

	mu      sync.Mutex
	pending *Entry
}

// Option configures the Client.
type Option func(*Client)

// WithCache enables the on-disk response cache.
func WithCache(c *FileCache) Option {
	return func(cl *Client) { cl.cache = c }
}

// WithNoCache bypasses the cache even when one is configured.
func WithNoCache() Option {
	return func(cl *Client) { cl.noCache = true }
}

// WithTimeout bounds the whole request.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.http.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) { cl.userAgent = ua }
}

// WithLogger routes request logging to l.
func WithLogger(l *log.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New creates a client for endpoint (DefaultEndpoint when empty).
func New(endpoint string, opts ...Option) *Client {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:  endpoint,
		http:      &http.Client{Timeout: 30 * time.Second},
		userAgent: "mdb",
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL being fetched.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch returns the catalog body. A fresh cache entry short-circuits the
// request; a stale one is revalidated with its validators. Failures are not
// retried. A newly downloaded body is held back from the cache until Commit.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	var stale *Entry
	if c.cache != nil && !c.noCache {
		entry, fresh := c.cache.Get(c.endpoint)
		if fresh {
			c.logger.Debug("catalog served from cache", "endpoint", c.endpoint, "cached_at", entry.CachedAt)
			return entry.Body, nil
		}
		stale = entry
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if stale != nil {
		if stale.ETag != "" {
			req.Header.Set("If-None-Match", stale.ETag)
		}
		if stale.LastMod != "" {
			req.Header.Set("If-Modified-Since", stale.LastMod)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && stale != nil {
		c.logger.Debug("catalog not modified", "endpoint", c.endpoint)
		if err := c.cache.Set(c.endpoint, stale); err != nil {
			c.logger.Warn("refreshing cache entry", "err", err)
		}
		return stale.Body, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(strings.TrimSpace(string(body)), 200)}
	}
	c.logger.Info("catalog fetched", "endpoint", c.endpoint, "bytes", len(body), "elapsed", time.Since(start))

	if c.cache != nil && !c.noCache {
		c.mu.Lock()
		c.pending = &Entry{
			Body:    body,
			ETag:    resp.Header.Get("ETag"),
			LastMod: resp.Header.Get("Last-Modified"),
		}
		c.mu.Unlock()
	}
	return body, nil
}

// Commit stores the body of the last Fetch in the cache. Callers commit once
// the body has been parsed, so a malformed download is never served again.
func (c *Client) Commit() error {
	c.mu.Lock()
	entry := c.pending
	c.pending = nil
	c.mu.Unlock()
	if entry == nil {
		return nil
	}
	if err := c.cache.Set(c.endpoint, entry); err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}
	return nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "…"
}
