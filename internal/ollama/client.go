package ollama

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/five82/bookclub/internal/httpx"
)

const (
	DefaultEndpoint = "http://localhost:11434/api/generate"
	DefaultModel    = "phi3:mini"

	LivenessTimeout = 30 * time.Second
	AnalysisTimeout = 120 * time.Second
	TagsTimeout     = 5 * time.Second

	generatePath = "/api/generate"
	tagsPath     = "/api/tags"
	keepAlive    = "10m"
)

// Client talks to a local Ollama server through its generate endpoint.
type Client struct {
	endpoint string
	root     string
	model    string
	http     *httpx.Client
	now      func() time.Time

	livenessTimeout time.Duration
	analysisTimeout time.Duration
	tagsTimeout     time.Duration
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

// WithTimeouts overrides the liveness and analysis timeouts. Zero keeps the
// default.
func WithTimeouts(liveness, analysis time.Duration) Option {
	return func(c *Client) {
		if liveness > 0 {
			c.livenessTimeout = liveness
		}
		if analysis > 0 {
			c.analysisTimeout = analysis
		}
	}
}

// WithClock replaces time.Now for footer timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds a Client for the generate endpoint and model. An endpoint
// without a path gets /api/generate appended.
func NewClient(endpoint, model string, opts ...Option) (*Client, error) {
	generate, root, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		endpoint:        generate,
		root:            root,
		model:           model,
		http:            httpx.NewClient(),
		now:             time.Now,
		livenessTimeout: LivenessTimeout,
		analysisTimeout: AnalysisTimeout,
		tagsTimeout:     TagsTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// Endpoint returns the generate URL.
func (c *Client) Endpoint() string {
	if c == nil {
		return ""
	}
	return c.endpoint
}

// Root returns the server root the generate URL lives under.
func (c *Client) Root() string {
	if c == nil {
		return ""
	}
	return c.root
}

func parseEndpoint(raw string) (generate, root string, err error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultEndpoint
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", "", fmt.Errorf("parse ollama url %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("parse ollama url %q: missing host", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""

	path := strings.TrimRight(u.Path, "/")
	if path == "" {
		path = generatePath
	}
	u.Path = path
	generate = u.String()

	u.Path = strings.TrimSuffix(path, generatePath)
	root = strings.TrimRight(u.String(), "/")
	return generate, root, nil
}
