package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/bookclub/internal/library"
	"github.com/five82/bookclub/internal/ollama"
	"github.com/five82/bookclub/internal/prefs"
)

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The custom genre input swallows everything but ctrl+c.
	if m.editingGenre {
		return m.handleGenreInput(msg)
	}

	// Help overlay closes on any key
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		next := NextTheme(m.theme.Name)
		m.theme = GetTheme(next)
		m.savePrefs(func(p *prefs.Prefs) { p.Theme = next })
		m.refreshViewports()
		return m, nil

	case key.Matches(msg, m.keys.CycleKind):
		m.kind = nextKind(m.kind)
		m.savePrefs(func(p *prefs.Prefs) { p.LastKind = m.kind.String() })
		m.setStatus(statusInfo, "Analysis mode: "+m.kind.Label())
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.switchView(cycleView(m.currentView, 1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(cycleView(m.currentView, -1))

	case key.Matches(msg, m.keys.Escape):
		return m.switchView(ViewGenres)

	case key.Matches(msg, m.keys.ViewGenres):
		return m.switchView(ViewGenres)

	case key.Matches(msg, m.keys.ViewBooks):
		return m.switchView(ViewBooks)

	case key.Matches(msg, m.keys.ViewResults):
		return m.switchView(ViewResults)

	case key.Matches(msg, m.keys.ViewAnalysis):
		return m.switchView(ViewAnalysis)

	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchView(ViewLogs)

	case key.Matches(msg, m.keys.Research):
		genre := m.snapshot.Session.Genre
		if genre == "" {
			genre = m.searchGenre
		}
		if genre == "" {
			genre = library.Genres[m.genreCursor]
		}
		return m, m.startSearch(genre)
	}

	// View-specific keys
	switch m.currentView {
	case ViewGenres:
		return m.handleGenresKey(msg)
	case ViewBooks:
		return m.handleBooksKey(msg)
	case ViewResults:
		scrollViewport(&m.resultsViewport, msg, m.keys)
		return m, nil
	case ViewAnalysis:
		return m.handleAnalysisKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}

	return m, nil
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	m.refreshViewports()
	if v == ViewLogs {
		return m, readLogsCmd(m.logPath)
	}
	return m, nil
}

func (m Model) handleGenresKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CustomGenre):
		m.editingGenre = true
		m.genreInput.SetValue("")
		return m, m.genreInput.Focus()
	case key.Matches(msg, m.keys.Confirm):
		return m, m.startSearch(library.Genres[m.genreCursor])
	case key.Matches(msg, m.keys.Up):
		m.genreCursor = clamp(m.genreCursor-1, 0, len(library.Genres)-1)
	case key.Matches(msg, m.keys.Down):
		m.genreCursor = clamp(m.genreCursor+1, 0, len(library.Genres)-1)
	case key.Matches(msg, m.keys.Top):
		m.genreCursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.genreCursor = len(library.Genres) - 1
	}
	return m, nil
}

func (m Model) handleGenreInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.editingGenre = false
		m.genreInput.Blur()
		return m, nil
	case tea.KeyEnter:
		genre := m.genreInput.Value()
		m.editingGenre = false
		m.genreInput.Blur()
		return m, m.startSearch(genre)
	}

	var cmd tea.Cmd
	m.genreInput, cmd = m.genreInput.Update(msg)
	return m, cmd
}

func (m Model) handleBooksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	books := m.snapshot.Session.Books
	switch {
	case key.Matches(msg, m.keys.Analyze):
		return m, m.startAnalysis()
	case len(books) == 0:
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.selectBook(m.bookCursor - 1)
	case key.Matches(msg, m.keys.Down):
		m.selectBook(m.bookCursor + 1)
	case key.Matches(msg, m.keys.Top):
		m.selectBook(0)
	case key.Matches(msg, m.keys.Bottom):
		m.selectBook(len(books) - 1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.detailViewport.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.detailViewport.HalfPageUp()
	}
	return m, nil
}

func (m Model) handleAnalysisKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Analyze) {
		return m, m.startAnalysis()
	}
	scrollViewport(&m.analysisViewport, msg, m.keys)
	return m, nil
}

// scrollViewport applies the shared scroll bindings to vp.
func scrollViewport(vp *viewport.Model, msg tea.KeyMsg, keys keyMap) bool {
	switch {
	case key.Matches(msg, keys.Down):
		vp.ScrollDown(1)
	case key.Matches(msg, keys.Up):
		vp.ScrollUp(1)
	case key.Matches(msg, keys.Top):
		vp.GotoTop()
	case key.Matches(msg, keys.Bottom):
		vp.GotoBottom()
	case key.Matches(msg, keys.HalfPageDown):
		vp.HalfPageDown()
	case key.Matches(msg, keys.HalfPageUp):
		vp.HalfPageUp()
	case key.Matches(msg, keys.PageDown):
		vp.PageDown()
	case key.Matches(msg, keys.PageUp):
		vp.PageUp()
	default:
		return false
	}
	return true
}

func cycleView(current View, step int) View {
	for i, v := range viewOrder {
		if v == current {
			n := len(viewOrder)
			return viewOrder[((i+step)%n+n)%n]
		}
	}
	return ViewGenres
}

func nextKind(k ollama.Kind) ollama.Kind {
	for i, kind := range ollama.Kinds {
		if kind == k {
			return ollama.Kinds[(i+1)%len(ollama.Kinds)]
		}
	}
	return ollama.Kinds[0]
}
