// Package library searches the Open Library catalogue by subject.
//
// NormalizeGenre drops a leading label token only when it carries no letters
// or digits, so "🚀 science fiction" and a typed "science fiction" both search
// for "science fiction".
//
// SearchByGenre normalizes the genre label, runs one search.json request,
// keeps only records that carry a title, at least one author, and a first
// publish year, and retries once through a small alias table when nothing
// usable came back. Every accepted Book then gets its description fetched
// with bounded concurrency; results keep their original order.
//
// Search requests share the Client's rate limiter, so consecutive searches
// are at least MinRequestInterval apart. Description fetches are not
// throttled and never fail: problems become NoDescription or
// DescriptionUnavailable.
//
// FormatBooks and ChoiceLabel turn a result set into the Markdown block and
// picker labels the UI shows.
package library
