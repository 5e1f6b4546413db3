package library

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescription_UnmarshalShapes(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantKind DescriptionKind
		wantText string
	}{
		{"plain text", `{"description": "A story."}`, DescriptionPlainText, "A story."},
		{"structured", `{"description": {"type": "/type/text", "value": "A tale."}}`, DescriptionStructured, "A tale."},
		{"missing", `{"title": "x"}`, DescriptionMissing, ""},
		{"null", `{"description": null}`, DescriptionMissing, ""},
		{"number", `{"description": 42}`, DescriptionMissing, ""},
		{"structured without value", `{"description": {"type": "/type/text"}}`, DescriptionMissing, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var detail workDetail
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &detail))
			assert.Equal(t, tt.wantKind, detail.Description.Kind)
			assert.Equal(t, tt.wantText, detail.Description.Text)
		})
	}
}

func TestSanitizeDescription(t *testing.T) {
	assert.Equal(t, "Bold and new line", SanitizeDescription("<b>Bold</b>  and\n\n new <br/>line  "))

	long := strings.Repeat("word ", 200)
	got := SanitizeDescription(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, 503, len([]rune(got)))

	exact := strings.Repeat("é", 500)
	assert.Equal(t, exact, SanitizeDescription(exact))
}

func TestFetchDescription_EmptyKeySkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(server.Close)
	c, err := NewClient(server.URL)
	require.NoError(t, err)

	assert.Equal(t, NoDescription, c.FetchDescription(context.Background(), ""))
	assert.Zero(t, calls.Load())
}

func TestFetchDescription_Outcomes(t *testing.T) {
	long := strings.Repeat("a", 600)
	f := &fakeLibrary{details: map[string]string{
		"/works/plain":      `{"description": "<p>Hello   world</p>"}`,
		"/works/structured": `{"description": {"type": "/type/text", "value": "Structured text"}}`,
		"/works/empty":      `{"description": "   "}`,
		"/works/missing":    `{"title": "No description here"}`,
		"/works/broken":     `{not json`,
		"/works/long":       `{"description": "` + long + `"}`,
	}}
	c := newTestClient(t, f)
	ctx := context.Background()

	assert.Equal(t, "Hello world", c.FetchDescription(ctx, "/works/plain"))
	assert.Equal(t, "Structured text", c.FetchDescription(ctx, "works/structured"))
	assert.Equal(t, NoDescription, c.FetchDescription(ctx, "/works/empty"))
	assert.Equal(t, NoDescription, c.FetchDescription(ctx, "/works/missing"))
	assert.Equal(t, DescriptionUnavailable, c.FetchDescription(ctx, "/works/broken"))
	assert.Equal(t, DescriptionUnavailable, c.FetchDescription(ctx, "/works/unknown"))

	got := c.FetchDescription(ctx, "/works/long")
	assert.Equal(t, strings.Repeat("a", 500)+"...", got)
}

func TestFetchDescription_Idempotent(t *testing.T) {
	f := &fakeLibrary{details: map[string]string{
		"/works/OL1W": `{"description": {"value": "<i>Same</i>\tanswer"}}`,
	}}
	c := newTestClient(t, f)

	first := c.FetchDescription(context.Background(), "/works/OL1W")
	second := c.FetchDescription(context.Background(), "/works/OL1W")
	assert.Equal(t, first, second)
	assert.Equal(t, "Same answer", first)
}

func TestFetchDescription_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()
	c, err := NewClient(base)
	require.NoError(t, err)

	assert.Equal(t, DescriptionUnavailable, c.FetchDescription(context.Background(), "/works/OL1W"))
}
