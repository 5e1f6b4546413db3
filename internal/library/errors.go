package library

import (
	"errors"
	"fmt"
)

// ErrInvalidGenre is returned for an empty or blank genre.
var ErrInvalidGenre = errors.New("please enter a valid genre")

// suggestedGenres is offered when a search comes back empty.
const suggestedGenres = "fiction, mystery, romance, biography, history, philosophy, or literature"

// NoBooksError reports a search that produced no usable records, including
// after the alias retry.
type NoBooksError struct {
	Genre string
}

func (e *NoBooksError) Error() string {
	return fmt.Sprintf("no books found for genre '%s'. Try: %s", e.Genre, suggestedGenres)
}

// SearchError reports a failed search request.
type SearchError struct {
	Timeout    bool
	StatusCode int
	Err        error
}

func (e *SearchError) Error() string {
	switch {
	case e.Timeout:
		return "request timed out. Please try again"
	case e.StatusCode != 0:
		return fmt.Sprintf("open library API error: status code %d", e.StatusCode)
	default:
		return fmt.Sprintf("error searching books: %v", e.Err)
	}
}

func (e *SearchError) Unwrap() error { return e.Err }
