package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/five82/bookclub/internal/config"
	"github.com/five82/bookclub/internal/library"
	"github.com/five82/bookclub/internal/ollama"
	"github.com/five82/bookclub/internal/prefs"
	"github.com/five82/bookclub/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewGenres View = iota
	ViewBooks
	ViewResults
	ViewAnalysis
	ViewLogs
)

var viewOrder = []View{ViewGenres, ViewBooks, ViewResults, ViewAnalysis, ViewLogs}

// Searcher runs genre searches and formats their results.
type Searcher interface {
	SearchByGenre(ctx context.Context, genre string, limit int) ([]library.Book, error)
	FormatBooks(genre string, books []library.Book) string
}

// Analyzer generates analyses for a book.
type Analyzer interface {
	Model() string
	Analyze(ctx context.Context, book *library.Book, kind ollama.Kind) (ollama.Result, error)
}

// Options configures the UI.
type Options struct {
	Context     context.Context
	Searcher    Searcher
	Analyzer    Analyzer
	Store       *state.Store
	Config      *config.Config
	Prefs       prefs.Prefs
	PollTick    time.Duration
	ThemeName   string
	PrefsPath   string
	LogPath     string
	SearchLimit int
}

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusSuccess
	statusError
)

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx         context.Context
	searcher    Searcher
	analyzer    Analyzer
	store       *state.Store
	config      *config.Config
	prefsPath   string
	logPath     string
	searchLimit int
	pollTick    time.Duration
	keys        keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	spinner     spinner.Model

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time
	status      string
	statusLevel statusLevel

	// Genre picker
	genreCursor  int
	genreInput   textinput.Model
	editingGenre bool
	searchGenre  string

	// Books
	bookCursor      int
	detailViewport  viewport.Model
	resultsViewport viewport.Model

	// Analysis
	kind             ollama.Kind
	analyzing        bool
	analysisErr      error
	analysisViewport viewport.Model

	// Logs
	logViewport viewport.Model
	logLines    []string
	logFollow   bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = time.Second
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = opts.Prefs.Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	limit := opts.SearchLimit
	if limit <= 0 {
		limit = library.DefaultSearchLimit
	}

	ti := textinput.New()
	ti.Placeholder = "Type any genre or subject..."
	ti.CharLimit = 60
	ti.Prompt = "› "

	m := Model{
		ctx:         ctx,
		searcher:    opts.Searcher,
		analyzer:    opts.Analyzer,
		store:       opts.Store,
		config:      opts.Config,
		prefsPath:   prefsPath,
		logPath:     opts.LogPath,
		searchLimit: limit,
		pollTick:    pollTick,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		currentView: ViewGenres,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		genreInput:  ti,
		kind:        ollama.ParseKind(opts.Prefs.LastKind),
		logFollow:   true,
		status:      "Pick a genre and press enter",
	}
	m.genreCursor = genreIndex(opts.Prefs.LastGenre)
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	// Fetch snapshot immediately on start
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeViewports()
		m.refreshViewports()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		return m, nil

	case searchDoneMsg:
		return m.handleSearchDone(msg)

	case analysisDoneMsg:
		return m.handleAnalysisDone(msg)

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.currentView == ViewAnalysis {
			m.updateAnalysisViewport()
		}
		return m, cmd
	}

	// Cursor blink and other input-internal messages.
	if m.editingGenre {
		var cmd tea.Cmd
		m.genreInput, cmd = m.genreInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	// Show help overlay if active
	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// busy reports whether a search or analysis is in flight.
func (m Model) busy() bool {
	return m.analyzing || m.snapshot.Searching()
}

// handleTick processes the refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Fetch latest snapshot
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}

	// Refresh logs if in log view and following
	if m.currentView == ViewLogs && m.logFollow {
		cmds = append(cmds, readLogsCmd(m.logPath))
	}

	// Schedule next tick
	cmds = append(cmds, tickCmd(m.pollTick))

	return m, tea.Batch(cmds...)
}

// startSearch kicks off a search for genre unless it is blank.
func (m *Model) startSearch(genre string) tea.Cmd {
	if strings.TrimSpace(library.NormalizeGenre(genre)) == "" {
		m.setError(library.ErrInvalidGenre)
		return nil
	}
	if m.store == nil || m.searcher == nil {
		m.setError(errors.New("search is not available"))
		return nil
	}

	id := m.store.BeginSearch()
	m.snapshot = m.store.Snapshot()
	m.searchGenre = genre
	m.setStatus(statusInfo, fmt.Sprintf("🔍 Searching for %s books...", library.NormalizeGenre(genre)))
	m.savePrefs(func(p *prefs.Prefs) { p.LastGenre = genre })

	return tea.Batch(
		searchCmd(m.ctx, m.searcher, id, genre, m.searchLimit),
		m.spinner.Tick,
	)
}

func (m Model) handleSearchDone(msg searchDoneMsg) (tea.Model, tea.Cmd) {
	if m.store == nil {
		return m, nil
	}
	if err := m.store.FinishSearch(msg.id, msg.genre, msg.books, msg.err); err != nil {
		// A newer search replaced this one.
		return m, nil
	}

	m.bookCursor = 0
	m.analysisErr = nil
	if msg.err != nil {
		m.snapshot = m.store.Snapshot()
		m.setError(fmt.Errorf("search failed: %w", msg.err))
		m.refreshViewports()
		return m, nil
	}

	_ = m.store.Select(0)
	m.snapshot = m.store.Snapshot()
	m.setStatus(statusSuccess, fmt.Sprintf("✅ Found %d books in %s", len(msg.books), library.NormalizeGenre(msg.genre)))
	m.currentView = ViewBooks
	m.refreshViewports()
	return m, nil
}

// startAnalysis requests an analysis of the selected book.
func (m *Model) startAnalysis() tea.Cmd {
	if m.analyzing {
		return nil
	}
	book, ok := m.snapshot.Session.SelectedBook()
	if !ok {
		m.setError(ollama.ErrNoBook)
		return nil
	}
	if m.analyzer == nil {
		m.setError(errors.New("analysis is not available"))
		return nil
	}

	m.analyzing = true
	m.analysisErr = nil
	m.currentView = ViewAnalysis
	m.setStatus(statusInfo, fmt.Sprintf("🤖 %s for '%s' with %s...", m.kind.Label(), book.Title, m.analyzer.Model()))
	m.updateAnalysisViewport()

	return tea.Batch(
		analyzeCmd(m.ctx, m.analyzer, m.snapshot.Session.ID, m.snapshot.Session.Selected, book, m.kind),
		m.spinner.Tick,
	)
}

func (m Model) handleAnalysisDone(msg analysisDoneMsg) (tea.Model, tea.Cmd) {
	m.analyzing = false
	stale := msg.session != m.snapshot.Session.ID || msg.index != m.snapshot.Session.Selected
	if msg.err != nil && stale {
		return m, nil
	}
	if msg.err != nil {
		m.analysisErr = msg.err
		m.setError(msg.err)
		m.updateAnalysisViewport()
		return m, nil
	}
	if m.store != nil {
		if err := m.store.SetAnalysis(msg.session, msg.index, msg.result); err != nil {
			// The user moved on to another search or book.
			return m, nil
		}
		m.snapshot = m.store.Snapshot()
	}
	m.analysisErr = nil
	m.setStatus(statusSuccess, fmt.Sprintf("✨ %s ready", msg.result.Kind.Label()))
	m.updateAnalysisViewport()
	return m, nil
}

// selectBook moves the cursor and the store selection to index i.
func (m *Model) selectBook(i int) {
	books := m.snapshot.Session.Books
	if len(books) == 0 {
		return
	}
	i = clamp(i, 0, len(books)-1)
	m.bookCursor = i
	if m.store != nil {
		if err := m.store.Select(i); err != nil {
			m.setError(err)
			return
		}
		m.snapshot = m.store.Snapshot()
	}
	book := books[i]
	m.analysisErr = nil
	m.setStatus(statusInfo, fmt.Sprintf("📖 Selected: %s by %s", book.Title, strings.Join(book.Authors[:min(len(book.Authors), 2)], ", ")))
	m.updateDetailViewport()
}

func (m *Model) setStatus(level statusLevel, text string) {
	m.statusLevel = level
	m.status = text
}

func (m *Model) setError(err error) {
	m.setStatus(statusError, errorText(err))
}

func (m *Model) savePrefs(fn func(*prefs.Prefs)) {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Update(m.prefsPath, fn)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	// Main content
	b.WriteString(m.renderContent())
	b.WriteString("\n")

	// Status line
	b.WriteString(m.renderStatusLine())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewGenres:
		return m.renderGenres()
	case ViewBooks:
		return m.renderBooks()
	case ViewResults:
		return m.renderResults()
	case ViewAnalysis:
		return m.renderAnalysis()
	case ViewLogs:
		return m.renderLogs()
	default:
		return ""
	}
}

func (m Model) renderStatusLine() string {
	styles := m.theme.Styles()
	style := styles.MutedText
	switch m.statusLevel {
	case statusSuccess:
		style = styles.SuccessText
	case statusError:
		style = styles.DangerText
	}
	text := m.status
	if m.busy() {
		text = m.spinner.View() + " " + text
	}
	return lipgloss.NewStyle().Width(m.width).Render(style.Render(truncate(firstLine(text), m.width)))
}

// contentHeight is the height available between the header bars and the
// status line.
func (m Model) contentHeight() int {
	return max(m.height-3, 3)
}

// renderBox draws a bordered panel with a title line.
func (m Model) renderBox(title, content string, width, height int, focused bool) string {
	border := m.theme.Border
	if focused {
		border = m.theme.BorderFocus
	}
	styles := m.theme.Styles()
	head := styles.AccentText.Bold(true).Render(truncate(title, max(width-4, 1)))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Width(max(width-2, 1)).
		Height(max(height-2, 1)).
		MaxHeight(height).
		Render(head + "\n" + content)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type searchDoneMsg struct {
	id    uuid.UUID
	genre string
	books []library.Book
	err   error
}

type analysisDoneMsg struct {
	session uuid.UUID
	index   int
	result  ollama.Result
	err     error
}

type logLinesMsg struct {
	lines []string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func searchCmd(ctx context.Context, searcher Searcher, id uuid.UUID, genre string, limit int) tea.Cmd {
	return func() tea.Msg {
		books, err := searcher.SearchByGenre(ctx, genre, limit)
		return searchDoneMsg{id: id, genre: genre, books: books, err: err}
	}
}

func analyzeCmd(ctx context.Context, analyzer Analyzer, session uuid.UUID, index int, book *library.Book, kind ollama.Kind) tea.Cmd {
	return func() tea.Msg {
		res, err := analyzer.Analyze(ctx, book, kind)
		return analysisDoneMsg{session: session, index: index, result: res, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
