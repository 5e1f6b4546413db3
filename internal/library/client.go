package library

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/five82/bookclub/internal/httpx"
)

const (
	DefaultBaseURL            = "https://openlibrary.org"
	DefaultSearchLimit        = 20
	DefaultDescriptionWorkers = 4

	SearchTimeout      = 10 * time.Second
	DescriptionTimeout = 6 * time.Second

	// MinRequestInterval is the minimum gap between consecutive search calls.
	MinRequestInterval = time.Second
	maxSearchFetch     = 40
)

// Client searches Open Library. It owns the limiter that spaces out search
// requests, so one Client should be shared per process.
type Client struct {
	baseURL            string
	http               *httpx.Client
	limiter            *rate.Limiter
	workers            int
	searchTimeout      time.Duration
	descriptionTimeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTP sets the HTTP wrapper used for all requests.
func WithHTTP(hc *httpx.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLimiter replaces the search rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		if l != nil {
			c.limiter = l
		}
	}
}

// WithDescriptionWorkers bounds concurrent description fetches. One keeps
// them strictly sequential.
func WithDescriptionWorkers(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithTimeouts overrides the search and description timeouts.
func WithTimeouts(search, description time.Duration) Option {
	return func(c *Client) {
		if search > 0 {
			c.searchTimeout = search
		}
		if description > 0 {
			c.descriptionTimeout = description
		}
	}
}

// NewClient builds a Client for the Open Library instance at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:            base,
		http:               httpx.NewClient(),
		limiter:            rate.NewLimiter(rate.Every(MinRequestInterval), 1),
		workers:            DefaultDescriptionWorkers,
		searchTimeout:      SearchTimeout,
		descriptionTimeout: DescriptionTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized service root.
func (c *Client) BaseURL() string {
	if c == nil {
		return DefaultBaseURL
	}
	return c.baseURL
}

func parseBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse open library url %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("parse open library url %q: missing host", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
}
