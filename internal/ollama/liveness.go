package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/five82/bookclub/internal/httpx"
	"github.com/five82/bookclub/internal/library"
)

const livenessPrompt = "Hello"

// Service is the part of *Client the app and UI depend on.
type Service interface {
	Model() string
	CheckAvailability(ctx context.Context) (bool, string)
	Tags(ctx context.Context) ([]Model, error)
	Analyze(ctx context.Context, book *library.Book, kind Kind) (Result, error)
}

var _ Service = (*Client)(nil)

// CheckAvailability sends a minimal prompt and reports whether the server
// answered with status 200 and a response field. It never caches.
func (c *Client) CheckAvailability(ctx context.Context) (bool, string) {
	if c == nil {
		return false, "client is nil"
	}
	resp, err := c.http.Post(ctx, c.endpoint, generateRequest{Model: c.model, Prompt: livenessPrompt}, c.livenessTimeout)
	if err != nil {
		switch {
		case httpx.IsConnectionRefused(err):
			return false, "Ollama server not running (connection refused)"
		case httpx.IsTimeout(err):
			return false, fmt.Sprintf("Ollama server timeout after %d seconds", int(c.livenessTimeout.Seconds()))
		default:
			return false, fmt.Sprintf("Ollama error: %v", err)
		}
	}
	if !resp.OK() {
		return false, fmt.Sprintf("Ollama returned status %d", resp.StatusCode)
	}
	var payload map[string]json.RawMessage
	if err := resp.DecodeJSON(&payload); err != nil {
		return false, "Ollama responded but format unexpected"
	}
	if _, ok := payload["response"]; !ok {
		return false, "Ollama responded but format unexpected"
	}
	return true, "Ollama is available and responding"
}

// Model is one entry of /api/tags.
type Model struct {
	Name       string `json:"name"`
	Model      string `json:"model"`
	Size       int64  `json:"size"`
	Digest     string `json:"digest"`
	ModifiedAt string `json:"modified_at"`
}

// Tags lists the models the server has pulled.
func (c *Client) Tags(ctx context.Context) ([]Model, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	resp, err := c.http.Get(ctx, c.root+tagsPath, nil, c.tagsTimeout)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	if !resp.OK() {
		return nil, &StatusError{Code: resp.StatusCode}
	}
	var payload struct {
		Models []Model `json:"models"`
	}
	if err := resp.DecodeJSON(&payload); err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return payload.Models, nil
}

// HasModel reports whether name is among models. A name without a tag
// matches its ":latest" entry.
func HasModel(models []Model, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	alt := name
	if !strings.Contains(name, ":") {
		alt = name + ":latest"
	}
	for _, m := range models {
		if m.Name == name || m.Name == alt || m.Model == name || m.Model == alt {
			return true
		}
	}
	return false
}

// Generate sends prompt without analysis options and returns the raw reply.
// It uses the liveness timeout; bookcheck uses it as a smoke test.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	resp, err := c.http.Post(ctx, c.endpoint, generateRequest{Model: c.model, Prompt: prompt}, c.livenessTimeout)
	if err != nil {
		switch {
		case httpx.IsTimeout(err):
			return "", &TimeoutError{After: c.livenessTimeout}
		case httpx.IsConnectionRefused(err):
			return "", ErrConnectionRefused
		default:
			return "", &RequestError{Err: err}
		}
	}
	if !resp.OK() {
		return "", &StatusError{Code: resp.StatusCode}
	}
	var payload generateResponse
	if err := resp.DecodeJSON(&payload); err != nil {
		return "", &RequestError{Err: err}
	}
	if payload.Response == nil {
		return "", ErrEmptyResponse
	}
	return *payload.Response, nil
}
