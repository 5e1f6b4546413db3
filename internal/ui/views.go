package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/bookclub/internal/library"
)

const minListWidth = 30

// listWidth is the width of the book list pane in the split view.
func (m Model) listWidth() int {
	return min(max(m.width*2/5, minListWidth), m.width)
}

// resizeViewports fits every viewport to the current window.
func (m *Model) resizeViewports() {
	inner := m.contentHeight() - 3
	full := max(m.width-4, 1)

	setSize := func(vp *viewport.Model, w, h int) {
		if vp.Width == 0 && vp.Height == 0 {
			*vp = viewport.New(w, h)
			return
		}
		vp.Width = w
		vp.Height = h
	}
	setSize(&m.resultsViewport, full, max(inner, 1))
	setSize(&m.analysisViewport, full, max(inner-1, 1))
	setSize(&m.logViewport, full, max(inner, 1))
	setSize(&m.detailViewport, max(m.width-m.listWidth()-4, 1), max(inner, 1))
}

// refreshViewports rerenders content that depends on the snapshot or theme.
func (m *Model) refreshViewports() {
	if !m.ready {
		return
	}
	m.updateDetailViewport()
	m.updateResultsViewport()
	m.updateAnalysisViewport()
	m.updateLogViewport()
}

func wrap(text string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(text)
}

func (m *Model) updateDetailViewport() {
	books := m.snapshot.Session.Books
	if len(books) == 0 {
		m.detailViewport.SetContent("")
		return
	}
	i := clamp(m.bookCursor, 0, len(books)-1)
	m.detailViewport.SetContent(wrap(library.FormatBook(i+1, books[i]), m.detailViewport.Width))
	m.detailViewport.GotoTop()
}

func (m *Model) updateResultsViewport() {
	styles := m.theme.Styles()
	session := m.snapshot.Session
	var content string
	switch {
	case m.snapshot.SearchError != nil:
		content = styles.DangerText.Render(errorText(m.snapshot.SearchError))
	case session.Genre == "" || m.searcher == nil:
		content = styles.MutedText.Render("No search yet. Pick a genre first.")
	default:
		content = m.searcher.FormatBooks(session.Genre, session.Books)
	}
	m.resultsViewport.SetContent(wrap(content, m.resultsViewport.Width))
}

func (m *Model) updateAnalysisViewport() {
	styles := m.theme.Styles()
	session := m.snapshot.Session
	book, hasBook := session.SelectedBook()

	var content string
	switch {
	case m.analyzing && hasBook:
		model := ""
		if m.analyzer != nil {
			model = m.analyzer.Model()
		}
		content = m.spinner.View() + " " + styles.InfoText.Render(
			fmt.Sprintf("Generating %s for '%s' with %s...", strings.ToLower(m.kind.Label()), book.Title, model)) +
			"\n\n" + styles.MutedText.Render("The first request after a cold start can take a couple of minutes.")
	case m.analysisErr != nil:
		content = styles.DangerText.Render(errorText(m.analysisErr))
	case session.Analysis != nil:
		content = session.Analysis.Text
	case !hasBook:
		content = styles.MutedText.Render("Select a book on the books view, then press enter.")
	default:
		content = styles.MutedText.Render(fmt.Sprintf("Press enter to generate a %s for '%s'.", strings.ToLower(m.kind.Label()), book.Title))
	}
	m.analysisViewport.SetContent(wrap(content, m.analysisViewport.Width))
}

// renderGenres renders the genre picker.
func (m Model) renderGenres() string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	rows := max(height-3, 1)
	if m.editingGenre {
		rows = max(rows-2, 1)
	}

	start := scrollStart(m.genreCursor, len(library.Genres), rows)
	var lines []string
	for i := start; i < len(library.Genres) && len(lines) < rows; i++ {
		label := library.Genres[i]
		if i == m.genreCursor && !m.editingGenre {
			lines = append(lines, styles.Selected.Width(m.width-4).Render("› "+label))
			continue
		}
		lines = append(lines, styles.Text.Render("  "+label))
	}
	if m.editingGenre {
		lines = append(lines, "", m.genreInput.View())
	}

	return m.renderBox("Choose a genre", strings.Join(lines, "\n"), m.width, height, true)
}

// renderBooks renders the split book list and detail panes.
func (m Model) renderBooks() string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	books := m.snapshot.Session.Books
	leftW := m.listWidth()

	if len(books) == 0 {
		msg := "No books yet. Pick a genre and press enter."
		if m.snapshot.Searching() {
			msg = m.spinner.View() + " Searching..."
		}
		return m.renderBox("Books", styles.MutedText.Render(msg), m.width, height, true)
	}

	rows := max(height-3, 1)
	start := scrollStart(m.bookCursor, len(books), rows)
	var lines []string
	for i := start; i < len(books) && len(lines) < rows; i++ {
		label := truncate(library.ChoiceLabel(i, books[i]), leftW-4)
		if i == m.bookCursor {
			lines = append(lines, styles.Selected.Width(leftW-4).Render(label))
			continue
		}
		lines = append(lines, styles.Text.Render(label))
	}

	title := fmt.Sprintf("%s (%d)", library.NormalizeGenre(m.snapshot.Session.Genre), len(books))
	list := m.renderBox(title, strings.Join(lines, "\n"), leftW, height, true)
	detail := m.renderBox("Details", m.detailViewport.View(), m.width-leftW, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

// renderResults renders the full Markdown results block.
func (m Model) renderResults() string {
	return m.renderBox("Results", m.resultsViewport.View(), m.width, m.contentHeight(), true)
}

// renderAnalysis renders the analysis pane for the selected book.
func (m Model) renderAnalysis() string {
	styles := m.theme.Styles()
	sub := styles.MutedText.Render("No book selected")
	if book, ok := m.snapshot.Session.SelectedBook(); ok {
		sub = styles.Text.Render(truncate(book.Title+" by "+book.FirstAuthor(), m.width-6))
	}
	content := sub + "\n" + m.analysisViewport.View()
	return m.renderBox(m.kind.Label(), content, m.width, m.contentHeight(), true)
}

// scrollStart returns the first visible row so cursor stays on screen.
func scrollStart(cursor, total, rows int) int {
	if total <= rows || cursor < rows/2 {
		return 0
	}
	return clamp(cursor-rows/2, 0, total-rows)
}
