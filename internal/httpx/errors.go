package httpx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// Kind classifies a transport failure.
type Kind int

const (
	KindOther Kind = iota
	KindConnectionRefused
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindConnectionRefused:
		return "connection refused"
	case KindTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// TransportError is returned when a request never produced a response.
type TransportError struct {
	Kind Kind
	Op   string
	URL  string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.URL, e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FormatError reports an upstream payload with an unexpected shape.
type FormatError struct {
	URL string
	Err error
}

func (e *FormatError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("unexpected response format: %v", e.Err)
	}
	return fmt.Sprintf("unexpected response format from %s: %v", e.URL, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

func newTransportError(op, url string, err error) *TransportError {
	return &TransportError{Kind: classify(err), Op: op, URL: url, Err: err}
}

func classify(err error) Kind {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return KindConnectionRefused
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	// Some platforms only surface the refusal in the message.
	if strings.Contains(strings.ToLower(err.Error()), "connection refused") {
		return KindConnectionRefused
	}
	return KindOther
}

// KindOf returns the transport kind for err, or KindOther when err is not a
// *TransportError.
func KindOf(err error) Kind {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindOther
}

// IsTimeout reports whether err is a transport timeout.
func IsTimeout(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == KindTimeout
}

// IsConnectionRefused reports whether err is a refused connection.
func IsConnectionRefused(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == KindConnectionRefused
}
