package ollama

import (
	"context"
	"fmt"
	"log"
	"time"
	"unicode"

	"github.com/five82/bookclub/internal/httpx"
	"github.com/five82/bookclub/internal/library"
)

// minOutputChars is the number of non-whitespace characters a reply must
// exceed to count as an answer.
const minOutputChars = 10

// Result is one completed analysis.
type Result struct {
	Kind        Kind
	Text        string
	Model       string
	GeneratedAt time.Time
	SourceURL   string
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
	NumCtx      int     `json:"num_ctx"`
}

type generateRequest struct {
	Model     string           `json:"model"`
	Prompt    string           `json:"prompt"`
	Stream    bool             `json:"stream"`
	Options   *generateOptions `json:"options,omitempty"`
	KeepAlive string           `json:"keep_alive,omitempty"`
}

type generateResponse struct {
	Model    string  `json:"model"`
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

var analysisOptions = generateOptions{
	Temperature: 0.6,
	TopP:        0.9,
	NumPredict:  400,
	NumCtx:      2048,
}

// Analyze generates kind text for book. It checks the server first and
// skips the generation request when that check fails.
func (c *Client) Analyze(ctx context.Context, book *library.Book, kind Kind) (Result, error) {
	if c == nil {
		return Result{}, fmt.Errorf("client is nil")
	}
	if book == nil {
		return Result{}, ErrNoBook
	}
	if ok, status := c.CheckAvailability(ctx); !ok {
		return Result{}, &UnavailableError{Status: status}
	}

	log.Printf("analysis %s for %q with %s", kind, book.Title, c.model)
	opts := analysisOptions
	req := generateRequest{
		Model:     c.model,
		Prompt:    BuildPrompt(kind, book.Title, book.FirstAuthor()),
		Options:   &opts,
		KeepAlive: keepAlive,
	}
	resp, err := c.http.Post(ctx, c.endpoint, req, c.analysisTimeout)
	if err != nil {
		switch {
		case httpx.IsTimeout(err):
			return Result{}, &TimeoutError{After: c.analysisTimeout}
		case httpx.IsConnectionRefused(err):
			return Result{}, ErrConnectionRefused
		default:
			return Result{}, &RequestError{Err: err}
		}
	}
	if !resp.OK() {
		return Result{}, &StatusError{Code: resp.StatusCode}
	}

	var payload generateResponse
	if err := resp.DecodeJSON(&payload); err != nil {
		return Result{}, &RequestError{Err: err}
	}
	var text string
	if payload.Response != nil {
		text = *payload.Response
	}
	if nonSpaceCount(text) <= minOutputChars {
		return Result{}, ErrEmptyResponse
	}

	at := c.now()
	return Result{
		Kind:        kind,
		Text:        text + Footer(c.model, at, book.SourceURL),
		Model:       c.model,
		GeneratedAt: at,
		SourceURL:   book.SourceURL,
	}, nil
}

// Footer is the provenance block appended to every analysis.
func Footer(model string, at time.Time, sourceURL string) string {
	if sourceURL == "" {
		sourceURL = "Open Library"
	}
	return fmt.Sprintf("\n\n---\n*Generated by %s on %s*\n*Book source: %s*", model, at.Format("2006-01-02 15:04"), sourceURL)
}

func nonSpaceCount(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
