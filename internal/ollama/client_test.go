package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/bookclub/internal/httpx"
	"github.com/five82/bookclub/internal/library"
)

type fakeServer struct {
	mu       sync.Mutex
	requests []generateRequest

	livenessStatus int
	livenessBody   string
	genStatus      int
	genBody        string
	genDelay       time.Duration
	tagsBody       string
}

func (f *fakeServer) handler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == tagsPath {
		_, _ = w.Write([]byte(f.tagsBody))
		return
	}
	var req generateRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if req.Prompt == livenessPrompt {
		if f.livenessStatus != 0 {
			w.WriteHeader(f.livenessStatus)
		}
		body := f.livenessBody
		if body == "" {
			body = `{"response": "Hi"}`
		}
		_, _ = w.Write([]byte(body))
		return
	}
	if f.genDelay > 0 {
		select {
		case <-time.After(f.genDelay):
		case <-r.Context().Done():
			return
		}
	}
	if f.genStatus != 0 {
		w.WriteHeader(f.genStatus)
	}
	_, _ = w.Write([]byte(f.genBody))
}

func (f *fakeServer) generateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, req := range f.requests {
		if req.Prompt != livenessPrompt {
			n++
		}
	}
	return n
}

func newTestClient(t *testing.T, f *fakeServer, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(server.Close)
	c, err := NewClient(server.URL+generatePath, "phi3:mini", opts...)
	require.NoError(t, err)
	return c
}

func testBook() *library.Book {
	return &library.Book{
		Title:     "Dune",
		Authors:   []string{"Frank Herbert", "Someone Else"},
		SourceURL: "https://openlibrary.org/works/OL1W",
	}
}

func TestAnalyze_Success(t *testing.T) {
	f := &fakeServer{genBody: `{"response": "Test successful!", "done": true}`}
	fixed := time.Date(2025, 3, 4, 15, 6, 0, 0, time.Local)
	c := newTestClient(t, f, WithClock(func() time.Time { return fixed }))

	res, err := c.Analyze(context.Background(), testBook(), KindDiscussion)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Text, "Test successful!"))
	assert.Contains(t, res.Text, "*Generated by phi3:mini on 2025-03-04 15:06*")
	assert.Contains(t, res.Text, "*Book source: https://openlibrary.org/works/OL1W*")
	assert.Equal(t, KindDiscussion, res.Kind)
	assert.Equal(t, "phi3:mini", res.Model)
	assert.Equal(t, fixed, res.GeneratedAt)

	require.Len(t, f.requests, 2)
	gen := f.requests[1]
	assert.Equal(t, "phi3:mini", gen.Model)
	assert.False(t, gen.Stream)
	assert.Equal(t, "10m", gen.KeepAlive)
	require.NotNil(t, gen.Options)
	assert.Equal(t, analysisOptions, *gen.Options)
	assert.Contains(t, gen.Prompt, `"Dune" by Frank Herbert`)
	assert.NotContains(t, gen.Prompt, "Someone Else")
	assert.Contains(t, gen.Prompt, "DISCUSSION")
}

func TestAnalyze_NilBookSkipsNetwork(t *testing.T) {
	f := &fakeServer{}
	c := newTestClient(t, f)

	_, err := c.Analyze(context.Background(), nil, KindSummary)
	assert.ErrorIs(t, err, ErrNoBook)
	assert.Contains(t, err.Error(), "select a book")
	assert.Empty(t, f.requests)
}

func TestAnalyze_UnavailableSkipsGeneration(t *testing.T) {
	f := &fakeServer{livenessStatus: http.StatusInternalServerError}
	c := newTestClient(t, f)

	_, err := c.Analyze(context.Background(), testBook(), KindSummary)
	var ue *UnavailableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Ollama returned status 500", ue.Status)
	assert.Contains(t, err.Error(), "ollama serve")
	assert.Zero(t, f.generateCalls())
}

func TestAnalyze_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		c := newTestClient(t, &fakeServer{genStatus: http.StatusNotFound, genBody: `{"error":"model not found"}`})
		_, err := c.Analyze(context.Background(), testBook(), KindSummary)
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusNotFound, se.Code)
		assert.Contains(t, err.Error(), "status code 404")
	})
	t.Run("trivial output", func(t *testing.T) {
		c := newTestClient(t, &fakeServer{genBody: `{"response": "  ok  \n  fine "}`})
		_, err := c.Analyze(context.Background(), testBook(), KindSummary)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
	t.Run("missing response field", func(t *testing.T) {
		c := newTestClient(t, &fakeServer{genBody: `{"done": true}`})
		_, err := c.Analyze(context.Background(), testBook(), KindSummary)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
	t.Run("malformed", func(t *testing.T) {
		c := newTestClient(t, &fakeServer{genBody: `not json`})
		_, err := c.Analyze(context.Background(), testBook(), KindSummary)
		var re *RequestError
		require.ErrorAs(t, err, &re)
	})
	t.Run("timeout", func(t *testing.T) {
		f := &fakeServer{genDelay: time.Second, genBody: `{"response": "far too late to matter"}`}
		c := newTestClient(t, f, WithTimeouts(0, 50*time.Millisecond))
		_, err := c.Analyze(context.Background(), testBook(), KindSummary)
		var te *TimeoutError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, 50*time.Millisecond, te.After)
	})
}

// refusingTransport answers the liveness prompt and refuses every other
// generate request, as a server that dies between the two would.
type refusingTransport struct{}

func (refusingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	var req generateRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Prompt != livenessPrompt {
		return nil, syscall.ECONNREFUSED
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(`{"response": "Hi"}`)),
		Request:    r,
	}, nil
}

func TestAnalyze_ConnectionRefusedAfterLivenessCheck(t *testing.T) {
	hc := httpx.NewClient(httpx.WithHTTPClient(&http.Client{Transport: refusingTransport{}}))
	c, err := NewClient("http://localhost:11434/api/generate", "phi3:mini", WithHTTP(hc))
	require.NoError(t, err)

	_, err = c.Analyze(context.Background(), testBook(), KindSummary)
	assert.ErrorIs(t, err, ErrConnectionRefused)
}

func TestAnalyze_ExactlyTenCharsIsEmpty(t *testing.T) {
	c := newTestClient(t, &fakeServer{genBody: `{"response": "abcde fghij"}`})
	_, err := c.Analyze(context.Background(), testBook(), KindSummary)
	assert.ErrorIs(t, err, ErrEmptyResponse)

	c = newTestClient(t, &fakeServer{genBody: `{"response": "abcde fghijk"}`})
	_, err = c.Analyze(context.Background(), testBook(), KindSummary)
	assert.NoError(t, err)
}

func TestFooter_DefaultsSource(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)
	assert.Equal(t, "\n\n---\n*Generated by m on 2024-01-02 03:04*\n*Book source: Open Library*", Footer("m", at, ""))
}

func TestCheckAvailability(t *testing.T) {
	t.Run("available", func(t *testing.T) {
		c := newTestClient(t, &fakeServer{})
		ok, status := c.CheckAvailability(context.Background())
		assert.True(t, ok)
		assert.Equal(t, "Ollama is available and responding", status)
	})
	t.Run("missing response field", func(t *testing.T) {
		c := newTestClient(t, &fakeServer{livenessBody: `{"done": true}`})
		ok, status := c.CheckAvailability(context.Background())
		assert.False(t, ok)
		assert.Contains(t, status, "format unexpected")
	})
	t.Run("status", func(t *testing.T) {
		c := newTestClient(t, &fakeServer{livenessStatus: http.StatusBadGateway})
		ok, status := c.CheckAvailability(context.Background())
		assert.False(t, ok)
		assert.Equal(t, "Ollama returned status 502", status)
	})
	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		endpoint := server.URL + generatePath
		server.Close()
		c, err := NewClient(endpoint, "")
		require.NoError(t, err)

		ok, status := c.CheckAvailability(context.Background())
		assert.False(t, ok)
		assert.Contains(t, status, "connection refused")

		_, err = c.Analyze(context.Background(), testBook(), KindSummary)
		var ue *UnavailableError
		require.ErrorAs(t, err, &ue)
	})
	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		t.Cleanup(server.Close)
		c, err := NewClient(server.URL, "", WithTimeouts(50*time.Millisecond, 0))
		require.NoError(t, err)

		ok, status := c.CheckAvailability(context.Background())
		assert.False(t, ok)
		assert.Contains(t, status, "timeout")
	})
}

func TestTags(t *testing.T) {
	f := &fakeServer{tagsBody: `{"models":[{"name":"phi3:mini","model":"phi3:mini","size":2176178913},{"name":"llama3:latest"}]}`}
	c := newTestClient(t, f)

	models, err := c.Tags(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, int64(2176178913), models[0].Size)
	assert.True(t, HasModel(models, "phi3:mini"))
	assert.True(t, HasModel(models, "llama3"))
	assert.False(t, HasModel(models, "mistral"))
	assert.False(t, HasModel(models, ""))
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in, generate, root string
	}{
		{"", DefaultEndpoint, "http://localhost:11434"},
		{"localhost:11434", "http://localhost:11434/api/generate", "http://localhost:11434"},
		{"http://gpu-box:11434/", "http://gpu-box:11434/api/generate", "http://gpu-box:11434"},
		{"https://proxy.local/ollama/api/generate?x=1", "https://proxy.local/ollama/api/generate", "https://proxy.local/ollama"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			generate, root, err := parseEndpoint(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.generate, generate)
			assert.Equal(t, tt.root, root)
		})
	}

	_, _, err := parseEndpoint("http://")
	assert.Error(t, err)
}

func TestNilClient(t *testing.T) {
	var c *Client
	ok, status := c.CheckAvailability(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "client is nil", status)
	_, err := c.Analyze(context.Background(), testBook(), KindSummary)
	assert.Error(t, err)
	_, err = c.Tags(context.Background())
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	f := &fakeServer{genBody: `{"response": "Test successful!"}`}
	c := newTestClient(t, f)

	got, err := c.Generate(context.Background(), "Say it")
	require.NoError(t, err)
	assert.Equal(t, "Test successful!", got)
	require.Len(t, f.requests, 1)
	assert.Nil(t, f.requests[0].Options)

	f.genBody = `{"done": true}`
	_, err = c.Generate(context.Background(), "Say it")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	f.genStatus = http.StatusInternalServerError
	_, err = c.Generate(context.Background(), "Say it")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}
