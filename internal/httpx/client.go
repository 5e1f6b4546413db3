package httpx

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
)

const (
	defaultUserAgent = "bookclub/0.1"
	maxBodyBytes     = 8 << 20
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	URL        string
}

// OK reports whether the response carries status 200.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode == http.StatusOK
}

// DecodeJSON decodes the body into dest, returning a *FormatError when the
// payload is not valid JSON for dest.
func (r *Response) DecodeJSON(dest any) error {
	if r == nil {
		return &FormatError{Err: fmt.Errorf("response is nil")}
	}
	if err := json.Unmarshal(r.Body, dest); err != nil {
		return &FormatError{URL: r.URL, Err: err}
	}
	return nil
}

// Client issues GET and POST requests with a per-call timeout. It never
// retries; callers decide what a failure means.
type Client struct {
	http      *http.Client
	userAgent string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client. Timeouts are applied per call, so the
// underlying http.Client carries none.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET for rawURL with params merged into its query string.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, timeout time.Duration) (*Response, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return c.do(ctx, http.MethodGet, u.String(), nil, timeout)
}

// Post issues a POST with body encoded as JSON.
func (c *Client) Post(ctx context.Context, rawURL string, body any, timeout time.Duration) (*Response, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, rawURL, payload, timeout)
}

func (c *Client) do(ctx context.Context, method, rawURL string, payload []byte, timeout time.Duration) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, newTransportError(method, rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, newTransportError(method, rawURL, err)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Body:       data,
		URL:        req.URL.String(),
	}, nil
}
