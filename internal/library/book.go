package library

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Placeholders used for Book.Description.
const (
	DescriptionPending     = "Description will be fetched separately"
	NoDescription          = "No description available."
	DescriptionUnavailable = "Description not available."
)

const coverURLFormat = "https://covers.openlibrary.org/b/id/%d-M.jpg"

// Book is one normalized search result. Title, Authors, and FirstPublishYear
// are always populated; optional upstream fields are pointers.
type Book struct {
	Title            string
	Authors          []string
	FirstPublishYear int
	Subjects         []string
	Language         []string
	PageCount        *int
	Key              string
	CoverID          *int
	ISBN             []string
	Publishers       []string
	Rating           *float64
	Description      string
	SourceURL        string
	SearchAPIURL     string
}

// FirstAuthor returns the primary author.
func (b Book) FirstAuthor() string {
	if len(b.Authors) == 0 {
		return ""
	}
	return b.Authors[0]
}

// CoverURL returns the medium cover image URL, or "" without a cover id.
func (b Book) CoverURL() string {
	if b.CoverID == nil || *b.CoverID <= 0 {
		return ""
	}
	return fmt.Sprintf(coverURLFormat, *b.CoverID)
}

// searchDoc mirrors one entry of search.json "docs". Pointer fields tell a
// missing value apart from a zero one.
type searchDoc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	AuthorName          []string `json:"author_name"`
	FirstPublishYear    *int     `json:"first_publish_year"`
	Subject             []string `json:"subject"`
	Language            []string `json:"language"`
	NumberOfPagesMedian *int     `json:"number_of_pages_median"`
	CoverI              *int     `json:"cover_i"`
	ISBN                []string `json:"isbn"`
	Publisher           []string `json:"publisher"`
	RatingsAverage      *float64 `json:"ratings_average"`
}

type searchResponse struct {
	NumFound int               `json:"numFound"`
	Docs     []json.RawMessage `json:"docs"`
}

// complete reports whether the doc carries the fields a Book requires.
func (d searchDoc) complete() bool {
	return d.Title != "" &&
		len(d.AuthorName) > 0 &&
		d.FirstPublishYear != nil && *d.FirstPublishYear != 0
}

const maxPublishers = 3

func (d searchDoc) toBook(baseURL, genre, searchURL string) Book {
	subjects := d.Subject
	if len(subjects) == 0 {
		subjects = []string{genre}
	}
	publishers := d.Publisher
	if len(publishers) > maxPublishers {
		publishers = publishers[:maxPublishers]
	}
	var sourceURL string
	if d.Key != "" {
		sourceURL = baseURL + d.Key
	}
	return Book{
		Title:            d.Title,
		Authors:          append([]string(nil), d.AuthorName...),
		FirstPublishYear: *d.FirstPublishYear,
		Subjects:         append([]string(nil), subjects...),
		Language:         append([]string(nil), d.Language...),
		PageCount:        d.NumberOfPagesMedian,
		Key:              d.Key,
		CoverID:          d.CoverI,
		ISBN:             append([]string(nil), d.ISBN...),
		Publishers:       append([]string(nil), publishers...),
		Rating:           d.RatingsAverage,
		Description:      DescriptionPending,
		SourceURL:        sourceURL,
		SearchAPIURL:     searchURL,
	}
}

// DescriptionKind tags the shape the upstream description arrived in.
type DescriptionKind int

const (
	DescriptionMissing DescriptionKind = iota
	DescriptionPlainText
	DescriptionStructured
)

// Description is the work "description" field, which Open Library sends
// either as a bare string or as {"type": ..., "value": ...}.
type Description struct {
	Kind DescriptionKind
	Text string
}

// UnmarshalJSON accepts both description shapes. Any other shape decodes as
// DescriptionMissing.
func (d *Description) UnmarshalJSON(data []byte) error {
	*d = Description{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return fmt.Errorf("decode description text: %w", err)
		}
		*d = Description{Kind: DescriptionPlainText, Text: text}
	case '{':
		var structured struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &structured); err != nil {
			return fmt.Errorf("decode description object: %w", err)
		}
		var text string
		if err := json.Unmarshal(structured.Value, &text); err != nil {
			return nil
		}
		*d = Description{Kind: DescriptionStructured, Text: text}
	}
	return nil
}

type workDetail struct {
	Title       string      `json:"title"`
	Description Description `json:"description"`
}
