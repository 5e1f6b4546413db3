package library

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Genres is the preset picker list. Labels carry a leading emoji token that
// NormalizeGenre strips.
var Genres = []string{
	"📚 fiction", "🕵️ mystery", "💕 romance", "🚀 science fiction", "🏰 fantasy",
	"👤 biography", "🌍 history", "🤔 philosophy", "🧠 psychology", "💪 self-help",
	"⚔️ adventure", "😱 thriller", "🎭 drama", "😄 comedy", "👻 horror",
	"📝 poetry", "🎨 art", "🎵 music", "✈️ travel", "🍳 cooking", "📚 literature",
}

const (
	maxListedAuthors  = 3
	maxListedSubjects = 10
)

// FormatBooks renders a search session as a Markdown block: a header, the
// source query, then one section per book.
func (c *Client) FormatBooks(genre string, books []Book) string {
	genre = NormalizeGenre(genre)
	if len(books) == 0 {
		return fmt.Sprintf("No books found for genre '%s'.", genre)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# 📚 %s Books (%d found)\n\n", cases.Title(language.English).String(genre), len(books))
	fmt.Fprintf(&b, "**Source**: Open Library API - %s/search.json?subject=%s\n\n", c.BaseURL(), url.QueryEscape(genre))

	for i, book := range books {
		b.WriteString(FormatBook(i+1, book))
	}
	return b.String()
}

// FormatBook renders one numbered book section.
func FormatBook(n int, book Book) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %d. %s\n", n, book.Title)

	authors := strings.Join(book.Authors[:min(len(book.Authors), maxListedAuthors)], ", ")
	if extra := len(book.Authors) - maxListedAuthors; extra > 0 {
		authors += fmt.Sprintf(" and %d others", extra)
	}
	fmt.Fprintf(&b, "**By:** %s\n\n", authors)

	fmt.Fprintf(&b, "**Published:** %d\n", book.FirstPublishYear)
	if book.PageCount != nil {
		fmt.Fprintf(&b, "**Pages:** %d\n", *book.PageCount)
	}
	if len(book.Publishers) > 0 {
		fmt.Fprintf(&b, "**Publisher:** %s\n", strings.Join(book.Publishers, ", "))
	}
	if book.Rating != nil {
		fmt.Fprintf(&b, "**Rating:** %.1f/5\n", *book.Rating)
	}
	if book.SourceURL != "" {
		fmt.Fprintf(&b, "**📖 View on Open Library:** [%s](%s)\n", book.SourceURL, book.SourceURL)
	}
	b.WriteString("\n")

	if book.Description != "" && book.Description != NoDescription {
		fmt.Fprintf(&b, "**Description:** %s\n\n", book.Description)
	}
	if len(book.Subjects) > 0 {
		subjects := strings.Join(book.Subjects[:min(len(book.Subjects), maxListedSubjects)], ", ")
		if extra := len(book.Subjects) - maxListedSubjects; extra > 0 {
			subjects += fmt.Sprintf(" (+%d more)", extra)
		}
		fmt.Fprintf(&b, "**Subjects:** %s\n\n", subjects)
	}
	if cover := book.CoverURL(); cover != "" {
		fmt.Fprintf(&b, "![Book Cover](%s)\n\n", cover)
	}
	b.WriteString("---\n\n")
	return b.String()
}

// ChoiceLabel is the picker label for the book at zero-based index i.
func ChoiceLabel(i int, book Book) string {
	label := fmt.Sprintf("%d. %s by %s", i+1, book.Title, strings.Join(book.Authors[:min(len(book.Authors), 2)], ", "))
	if len(book.Authors) > 2 {
		label += " et al."
	}
	return label
}
