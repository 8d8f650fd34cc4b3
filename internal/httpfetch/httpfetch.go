// Package httpfetch is the bot's outbound HTTP client: one user agent, one
// timeout, bounded retries for 429 and 5xx, and prefix reads for sniffing.
package httpfetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sudosnok/owopondbot/pkg/retrylimit"
)

// DefaultUserAgent mimics a desktop browser; some image hosts refuse Go's default.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// MaxBodySize caps full downloads.
const MaxBodySize = 25 << 20

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Status)
}

func (e *StatusError) StatusCode() int { return e.Status }

// Client fetches URLs. The zero value is not usable; use New.
type Client struct {
	http        *http.Client
	userAgent   string
	maxAttempts int
	limiter     *retrylimit.AdaptiveLimiter
}

type Option func(*Client)

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying client. The configured timeout is kept
// only if hc has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc.Timeout == 0 {
			hc.Timeout = c.http.Timeout
		}
		c.http = hc
	}
}

func WithMaxAttempts(n int) Option {
	return func(c *Client) { c.maxAttempts = n }
}

func New(opts ...Option) *Client {
	c := &Client{
		http:        &http.Client{Timeout: 30 * time.Second},
		userAgent:   DefaultUserAgent,
		maxAttempts: 3,
		limiter:     retrylimit.NewAdaptiveLimiter(10, 1, 20, 1, 0.5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads the whole body of url.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := c.do(ctx, url, nil, func(resp *http.Response) error {
		b, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
		if err != nil {
			return err
		}
		if len(b) > MaxBodySize {
			return retrylimit.Fatal(fmt.Errorf("GET %s: body exceeds %d bytes", url, MaxBodySize))
		}
		body = b
		return nil
	})
	return body, err
}

// FetchPrefix reads at most n leading bytes of url. It asks for a byte range
// and stops reading after n bytes even if the server sends the whole body.
func (c *Client) FetchPrefix(ctx context.Context, url string, n int) ([]byte, error) {
	hdr := http.Header{}
	hdr.Set("Range", fmt.Sprintf("bytes=0-%d", n-1))

	var prefix []byte
	err := c.do(ctx, url, hdr, func(resp *http.Response) error {
		b, err := io.ReadAll(io.LimitReader(resp.Body, int64(n)))
		if err != nil {
			return err
		}
		prefix = b
		return nil
	})
	return prefix, err
}

// GetText returns the body of url as a string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	b, err := c.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// GetJSON decodes the JSON body of url into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	b, err := c.Fetch(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, url string, hdr http.Header, read func(*http.Response) error) error {
	return retrylimit.WithRetryMax(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retrylimit.Fatal(err)
		}
		for k, vs := range hdr {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			serr := &StatusError{URL: url, Status: resp.StatusCode}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return serr
			}
			return retrylimit.Fatal(serr)
		}
		return read(resp)
	}, c.limiter, c.maxAttempts)
}
