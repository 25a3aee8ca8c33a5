// Package fetch implements a small HTTP fetcher with retry and backoff, used
// to stream remote table files into the reader.
//
// Design goals:
//
//   - Keep a tiny, explicit API (Get).
//   - Handle transient failures with exponential backoff.
//   - Respect context cancellation during requests and backoff waits.
//   - Be easy to test by injecting a custom RoundTripper and sleep function.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config configures the fetcher.
//
// Zero values are given sensible defaults:
//   - Timeout:        30s
//   - MaxRetries:     3
//   - InitialBackoff: 200ms
//   - MaxBackoff:     5s
type Config struct {
	// Timeout is the per-request timeout applied at the http.Client level.
	// It bounds the whole response, so very large files over slow links may
	// need a higher value.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the initial request.
	MaxRetries int

	// InitialBackoff is the base backoff for the first retry; each subsequent
	// retry doubles it up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Transport is an optional custom RoundTripper for tests.
	Transport http.RoundTripper
}

// Client fetches URLs with retry and backoff.
type Client struct {
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration

	// sleep replaces the backoff timer when set; tests use it to observe
	// backoff without waiting it out.
	sleep func(time.Duration)
}

// NewClient constructs a Client from Config, applying defaults for zero
// values.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
	}
}

// Get streams the body of url. Transport errors, 5xx, and 429 are retried
// with exponential backoff; any other non-200 status is final. The caller
// must close the returned body.
func (c *Client) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	attempts := c.maxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("fetch: build request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		switch {
		case err != nil:
			// Transport-level failure, retryable.
			lastErr = err
		case resp.StatusCode == http.StatusOK:
			return resp.Body, nil
		case isRetryableStatus(resp.StatusCode):
			resp.Body.Close()
			lastErr = fmt.Errorf("fetch: retryable status %s from GET %s", resp.Status, url)
		default:
			resp.Body.Close()
			return nil, fmt.Errorf("fetch: GET %s: %s", url, resp.Status)
		}

		if attempt+1 >= attempts {
			return nil, lastErr
		}
		if err := c.wait(ctx, backoffDuration(c.initialBackoff, attempt, c.maxBackoff)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// isRetryableStatus is intentionally conservative: 5xx and 429 are transient,
// everything else is final.
func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

// backoffDuration returns the exponential backoff for the 0-based retry
// index, clamped to max.
func backoffDuration(initial time.Duration, attempt int, max time.Duration) time.Duration {
	d := initial << attempt
	if d > max || d <= 0 {
		return max
	}
	return d
}

// wait blocks for d, aborting early when ctx is canceled. The injected sleep
// lets tests observe backoff without waiting it out.
func (c *Client) wait(ctx context.Context, d time.Duration) error {
	if c.sleep != nil {
		c.sleep(d)
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
