package ollama

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoBook is returned when Analyze is called without a book.
	ErrNoBook = errors.New("no book selected for analysis. Please select a book first")
	// ErrEmptyResponse means the model answered with trivial output.
	ErrEmptyResponse = errors.New("empty response generated. Please try again")
	// ErrConnectionRefused means nothing is listening at the generate URL.
	ErrConnectionRefused = errors.New("cannot connect to Ollama. Please ensure Ollama is running")
)

// UnavailableError is returned when the liveness check fails before an
// analysis. Status is the liveness check's status text.
type UnavailableError struct {
	Status string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("ollama error: %s\n\nTo fix:\n1. Open new terminal\n2. Run: ollama serve\n3. Try again", e.Status)
}

// StatusError reports a non-200 reply from the model server.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ollama returned status code %d", e.Code)
}

// TimeoutError reports a generation request that exceeded its deadline.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("analysis timed out after %d seconds. Please try again", int(e.After.Seconds()))
}

// RequestError wraps any other failure during an analysis request.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("error during analysis: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }
