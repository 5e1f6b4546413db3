package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/five82/bookclub/internal/httpx"
)

const pingSubject = "fiction"

// genreAliases is consulted exactly once when a subject search yields no
// usable records.
var genreAliases = map[string]string{
	"psychology":      "psychology",
	"fantasy":         "fantasy fiction",
	"self-help":       "self help",
	"science fiction": "science fiction",
	"sci-fi":          "science fiction",
}

// Alias returns the fallback subject for genre, if one is known.
func Alias(genre string) (string, bool) {
	alias, ok := genreAliases[genre]
	return alias, ok
}

// NormalizeGenre trims genre, drops a leading label token such as "🚀 " when
// that token has no letters or digits, and lower-cases the rest.
func NormalizeGenre(genre string) string {
	genre = strings.TrimSpace(genre)
	if head, rest, ok := strings.Cut(genre, " "); ok && !hasLetterOrDigit(head) {
		genre = strings.TrimSpace(rest)
	}
	return strings.ToLower(genre)
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// SearchByGenre returns up to limit books for genre, each with its
// description fetched. Errors are *SearchError, *NoBooksError, or
// ErrInvalidGenre.
func (c *Client) SearchByGenre(ctx context.Context, genre string, limit int) ([]Book, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	subject := NormalizeGenre(genre)
	if subject == "" {
		return nil, ErrInvalidGenre
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	books, err := c.searchSubject(ctx, subject, subject, limit)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		if alias, ok := Alias(subject); ok {
			log.Printf("no books for %q, retrying as %q", subject, alias)
			books, err = c.searchSubject(ctx, alias, subject, limit)
			var se *SearchError
			if err != nil && !(errors.As(err, &se) && se.StatusCode != 0) {
				return nil, err
			}
		}
	}
	if len(books) == 0 {
		return nil, &NoBooksError{Genre: subject}
	}

	c.fillDescriptions(ctx, books)
	return books, nil
}

// searchSubject runs one search.json request and keeps the docs that carry
// title, authors, and first publish year. genre labels records without
// subjects.
func (c *Client) searchSubject(ctx context.Context, subject, genre string, limit int) ([]Book, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &SearchError{Err: fmt.Errorf("rate limiter: %w", err)}
	}

	params := url.Values{}
	params.Set("subject", subject)
	params.Set("limit", strconv.Itoa(min(limit*2, maxSearchFetch)))
	params.Set("has_fulltext", "true")
	params.Set("language", "eng")

	resp, err := c.http.Get(ctx, c.baseURL+"/search.json", params, c.searchTimeout)
	if err != nil {
		return nil, &SearchError{Timeout: httpx.IsTimeout(err), Err: err}
	}
	if !resp.OK() {
		return nil, &SearchError{StatusCode: resp.StatusCode}
	}

	var payload searchResponse
	if err := resp.DecodeJSON(&payload); err != nil {
		return nil, &SearchError{Err: err}
	}

	books := make([]Book, 0, limit)
	for _, raw := range payload.Docs {
		var doc searchDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		if !doc.complete() {
			continue
		}
		books = append(books, doc.toBook(c.baseURL, genre, resp.URL))
		if len(books) >= limit {
			break
		}
	}
	return books, nil
}

// fillDescriptions fetches descriptions with at most c.workers requests in
// flight. Results land at their own index, so order is preserved.
func (c *Client) fillDescriptions(ctx context.Context, books []Book) {
	var g errgroup.Group
	g.SetLimit(c.workers)
	for i := range books {
		g.Go(func() error {
			books[i].Description = c.FetchDescription(ctx, books[i].Key)
			return nil
		})
	}
	_ = g.Wait()
}

// Ping runs a one-record search to confirm the service answers with usable
// data. It shares the search rate limiter.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	books, err := c.searchSubject(ctx, pingSubject, pingSubject, 1)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		return &NoBooksError{Genre: pingSubject}
	}
	return nil
}
