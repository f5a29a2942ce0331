// Package web is the HTTP adapter used by url verification and external
// lookups.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.WebClient = (*Client)(nil)

const (
	// DefaultTimeout bounds each request.
	DefaultTimeout = 10 * time.Second

	// MaxBodySize is the largest response body Get returns.
	MaxBodySize = 1 << 20

	defaultBackoff = 30 * time.Second
	maxRedirects   = 10
)

// ErrUnexpectedStatus is returned by Get for non-200 responses.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// Client performs rate-limited HEAD and GET requests.
// HEAD requests never follow redirects.
type Client struct {
	http    *http.Client
	limiter *RateLimiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit sets the request budget.
func WithRateLimit(cfg RateLimitConfig) Option {
	return func(c *Client) {
		c.limiter = NewRateLimiter(cfg)
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.Transport = rt
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout:       DefaultTimeout,
			CheckRedirect: checkRedirect,
		},
		limiter: NewRateLimiter(RateLimitConfig{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if req.Method == http.MethodHead {
		return http.ErrUseLastResponse
	}
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return nil
}

// Head returns the status code of a HEAD request for url.
func (c *Client) Head(ctx context.Context, url string) (int, error) {
	resp, err := c.do(ctx, http.MethodHead, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// Get returns the body of a GET request for url.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: %d: %w", url, resp.StatusCode, ErrUnexpectedStatus)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return string(body), nil
}

func (c *Client) do(ctx context.Context, method, url string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", method, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.Backoff(retryAfter(resp.Header.Get("Retry-After")))
	}
	return resp, nil
}

func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return defaultBackoff
	}
	return time.Duration(secs) * time.Second
}
