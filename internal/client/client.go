// Package client fetches season pages from pro-football-reference and parses
// them into season records.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"nfl_games/reconciler/internal/metrics"

	"github.com/rs/zerolog/log"
)

// PageCache stores raw page bodies between runs
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config holds fetcher settings
type Config struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	CacheTTL   time.Duration
}

// Client is the pro-football-reference page fetcher
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	cache      PageCache
	cacheTTL   time.Duration
}

// NewClient creates a fetcher. cache may be nil.
func NewClient(cfg Config, cache PageCache) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		cache:      cache,
		cacheTTL:   cfg.CacheTTL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// StatusError is returned for a non-200 response
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s returned status %d", e.URL, e.Status)
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// get fetches a page, serving it from the cache when present
func (c *Client) get(ctx context.Context, kind, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	if c.cache != nil {
		body, ok, err := c.cache.Get(ctx, url)
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Page cache read failed")
		} else if ok {
			metrics.RecordCacheHit()
			log.Debug().Str("url", url).Msg("Page served from cache")
			return body, nil
		}
		metrics.RecordCacheMiss()
	}

	start := time.Now()
	body, err := c.fetch(ctx, url)
	if err != nil {
		metrics.RecordPageFetch(kind, "error", time.Since(start).Seconds())
		return nil, err
	}
	metrics.RecordPageFetch(kind, "success", time.Since(start).Seconds())

	if c.cache != nil {
		if err := c.cache.Set(ctx, url, body, c.cacheTTL); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Page cache write failed")
		}
	}
	return body, nil
}

// fetch performs the GET with retries. The delay grows linearly per attempt.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.retryDelay * time.Duration(attempt)
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying page request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, status, err := c.do(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		switch {
		case status == http.StatusOK:
			log.Debug().Str("url", url).Int("size", len(body)).Msg("Page fetched")
			return body, nil
		case retryable(status):
			lastErr = &StatusError{URL: url, Status: status}
			log.Warn().Str("url", url).Int("status", status).Int("attempt", attempt+1).Msg("Received retryable status, will retry")
		default:
			return nil, &StatusError{URL: url, Status: status}
		}
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) do(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("page request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}
