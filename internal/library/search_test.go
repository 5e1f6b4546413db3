package library

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func doc(title string, authors []string, year int, key string) map[string]any {
	d := map[string]any{"key": key}
	if title != "" {
		d["title"] = title
	}
	if authors != nil {
		d["author_name"] = authors
	}
	if year != 0 {
		d["first_publish_year"] = year
	}
	return d
}

type fakeLibrary struct {
	mu          sync.Mutex
	docs        map[string][]map[string]any
	details     map[string]string
	subjects    []string
	limits      []string
	searchCalls atomic.Int32
	status      int
}

func (f *fakeLibrary) handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.URL.Path == "/search.json" {
		f.searchCalls.Add(1)
		q := r.URL.Query()
		f.mu.Lock()
		f.subjects = append(f.subjects, q.Get("subject"))
		f.limits = append(f.limits, q.Get("limit"))
		f.mu.Unlock()
		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}
		docs := f.docs[q.Get("subject")]
		if docs == nil {
			docs = []map[string]any{}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"numFound": len(docs), "docs": docs})
		return
	}
	body, ok := f.details[strings.TrimSuffix(r.URL.Path, ".json")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte(body))
}

func newTestClient(t *testing.T, f *fakeLibrary, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(server.Close)
	opts = append([]Option{WithLimiter(rate.NewLimiter(rate.Inf, 1))}, opts...)
	c, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNormalizeGenre(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"emoji label", "🚀 science fiction", "science fiction"},
		{"emoji with variation selector", "🕵️ mystery", "mystery"},
		{"plain word", "Mystery", "mystery"},
		{"plain phrase keeps words", "Science Fiction", "science fiction"},
		{"surrounding space", "   sci-fi  ", "sci-fi"},
		{"blank", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeGenre(tt.in))
		})
	}
}

func TestSearchByGenre_FiltersIncompleteRecords(t *testing.T) {
	f := &fakeLibrary{docs: map[string][]map[string]any{
		"mystery": {
			doc("Complete", []string{"A. Author"}, 1920, "/works/OL1W"),
			doc("", []string{"No Title"}, 1930, "/works/OL2W"),
			doc("No Authors", nil, 1940, "/works/OL3W"),
			doc("No Year", []string{"B. Author"}, 0, "/works/OL4W"),
			doc("Also Complete", []string{"C. Author"}, 1950, ""),
		},
	}}
	c := newTestClient(t, f)

	books, err := c.SearchByGenre(context.Background(), "🕵️ mystery", 20)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Complete", books[0].Title)
	assert.Equal(t, "Also Complete", books[1].Title)
	assert.Equal(t, []string{"mystery"}, books[0].Subjects)
	assert.Equal(t, c.BaseURL()+"/works/OL1W", books[0].SourceURL)
	assert.Empty(t, books[1].SourceURL)
	assert.Contains(t, books[0].SearchAPIURL, "subject=mystery")
	assert.Equal(t, []string{"40"}, f.limits)
}

func TestSearchByGenre_StopsAtLimitAndRequestsOverfetch(t *testing.T) {
	var docs []map[string]any
	for i := 0; i < 10; i++ {
		docs = append(docs, doc("Book", []string{"Author"}, 2000+i, ""))
	}
	f := &fakeLibrary{docs: map[string][]map[string]any{"history": docs}}
	c := newTestClient(t, f)

	books, err := c.SearchByGenre(context.Background(), "history", 3)
	require.NoError(t, err)
	assert.Len(t, books, 3)
	assert.Equal(t, []string{"6"}, f.limits)
}

func TestSearchByGenre_AliasFallback(t *testing.T) {
	f := &fakeLibrary{docs: map[string][]map[string]any{
		"science fiction": {
			doc("Dune", []string{"Frank Herbert"}, 1965, "/works/OL1W"),
			doc("Foundation", []string{"Isaac Asimov"}, 1951, "/works/OL2W"),
			doc("Neuromancer", []string{"William Gibson"}, 1984, "/works/OL3W"),
		},
	}}
	c := newTestClient(t, f)

	books, err := c.SearchByGenre(context.Background(), "sci-fi", 20)
	require.NoError(t, err)
	assert.Len(t, books, 3)
	assert.Equal(t, []string{"sci-fi", "science fiction"}, f.subjects)
	assert.Equal(t, []string{"sci-fi"}, books[0].Subjects)
}

func TestSearchByGenre_NoAliasReturnsNoBooks(t *testing.T) {
	f := &fakeLibrary{}
	c := newTestClient(t, f)

	_, err := c.SearchByGenre(context.Background(), "underwater basket weaving", 20)
	var nb *NoBooksError
	require.ErrorAs(t, err, &nb)
	assert.Equal(t, "underwater basket weaving", nb.Genre)
	assert.Contains(t, err.Error(), "Try: fiction")
	assert.EqualValues(t, 1, f.searchCalls.Load())
}

func TestSearchByGenre_EmptyAliasRetryReturnsNoBooks(t *testing.T) {
	f := &fakeLibrary{}
	c := newTestClient(t, f)

	_, err := c.SearchByGenre(context.Background(), "fantasy", 20)
	var nb *NoBooksError
	require.ErrorAs(t, err, &nb)
	assert.Equal(t, []string{"fantasy", "fantasy fiction"}, f.subjects)
}

func TestSearchByGenre_InvalidGenre(t *testing.T) {
	c := newTestClient(t, &fakeLibrary{})
	_, err := c.SearchByGenre(context.Background(), "   ", 20)
	assert.ErrorIs(t, err, ErrInvalidGenre)
}

func TestSearchByGenre_StatusError(t *testing.T) {
	f := &fakeLibrary{status: http.StatusServiceUnavailable}
	c := newTestClient(t, f)

	_, err := c.SearchByGenre(context.Background(), "fiction", 20)
	var se *SearchError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Contains(t, err.Error(), "status code 503")
}

func TestSearchByGenre_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)
	c, err := NewClient(server.URL,
		WithLimiter(rate.NewLimiter(rate.Inf, 1)),
		WithTimeouts(50*time.Millisecond, 0))
	require.NoError(t, err)

	_, err = c.SearchByGenre(context.Background(), "fiction", 5)
	var se *SearchError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.Timeout)
	assert.Contains(t, err.Error(), "timed out")
}

func TestSearchByGenre_FetchesDescriptionsInOrder(t *testing.T) {
	var docs []map[string]any
	details := map[string]string{}
	for i := 0; i < 6; i++ {
		key := "/works/OL" + string(rune('A'+i)) + "W"
		docs = append(docs, doc("Book "+string(rune('A'+i)), []string{"Author"}, 1990, key))
		details[key] = `{"description": "About ` + string(rune('A'+i)) + `"}`
	}
	f := &fakeLibrary{docs: map[string][]map[string]any{"drama": docs}, details: details}
	c := newTestClient(t, f, WithDescriptionWorkers(3))

	books, err := c.SearchByGenre(context.Background(), "🎭 drama", 20)
	require.NoError(t, err)
	require.Len(t, books, 6)
	for i, b := range books {
		assert.Equal(t, "About "+string(rune('A'+i)), b.Description, "book %d", i)
	}
}

func TestSearchByGenre_LimiterSpacesSearches(t *testing.T) {
	f := &fakeLibrary{}
	c := newTestClient(t, f, WithLimiter(rate.NewLimiter(rate.Every(100*time.Millisecond), 1)))

	start := time.Now()
	_, err := c.SearchByGenre(context.Background(), "sci-fi", 5)
	require.Error(t, err)
	assert.EqualValues(t, 2, f.searchCalls.Load())
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestSearchByGenre_CancelledContext(t *testing.T) {
	c := newTestClient(t, &fakeLibrary{}, WithLimiter(rate.NewLimiter(rate.Every(time.Hour), 1)))
	// Drain the single burst token so the next Wait blocks.
	_, _ = c.SearchByGenre(context.Background(), "poetry", 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.SearchByGenre(ctx, "poetry", 5)
	var se *SearchError
	require.ErrorAs(t, err, &se)
	assert.False(t, errors.Is(err, ErrInvalidGenre))
}

func TestBookCoverURL(t *testing.T) {
	id := 12345
	assert.Equal(t, "https://covers.openlibrary.org/b/id/12345-M.jpg", Book{CoverID: &id}.CoverURL())
	assert.Empty(t, Book{}.CoverURL())
}

func TestParseBaseURL(t *testing.T) {
	got, err := parseBaseURL("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, got)

	got, err = parseBaseURL("http://example.com:8080/?x=1#frag")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com:8080", got)

	got, err = parseBaseURL("openlibrary.org")
	require.NoError(t, err)
	assert.Equal(t, "https://openlibrary.org", got)
}

func TestPing(t *testing.T) {
	f := &fakeLibrary{docs: map[string][]map[string]any{
		"fiction": {doc("Emma", []string{"Jane Austen"}, 1815, "")},
	}}
	c := newTestClient(t, f)
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, []string{"2"}, f.limits)

	empty := newTestClient(t, &fakeLibrary{})
	var nb *NoBooksError
	assert.ErrorAs(t, empty.Ping(context.Background()), &nb)
}
