// Package urlcheck verifies that URLs declared by a spec are reachable.
package urlcheck

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single check.
const DefaultTimeout = 10 * time.Second

// Result is the outcome of a check that reached the server.
type Result struct {
	StatusCode int
}

// Reachable reports whether the server answered with a 2xx or 3xx status.
func (r Result) Reachable() bool {
	return r.StatusCode >= 200 && r.StatusCode < 400
}

// Checker issues HEAD requests, falling back to GET for servers that reject HEAD.
type Checker struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Checker.
type Option func(*Checker)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option {
	return func(ch *Checker) { ch.client = c }
}

// WithTimeout sets the per-check timeout.
func WithTimeout(d time.Duration) Option {
	return func(ch *Checker) { ch.timeout = d }
}

// New creates a Checker.
func New(opts ...Option) *Checker {
	c := &Checker{client: http.DefaultClient, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check requests url. An error means the server could not be reached at all.
func (c *Checker) Check(ctx context.Context, url string) (Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	status, err := c.do(ctx, http.MethodHead, url)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = c.do(ctx, http.MethodGet, url)
	}
	if err != nil {
		return Result{}, err
	}
	return Result{StatusCode: status}, nil
}

func (c *Checker) do(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "speclint")
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
