package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/bookclub/internal/config"
	"github.com/five82/bookclub/internal/library"
	"github.com/five82/bookclub/internal/ollama"
	"github.com/five82/bookclub/internal/prefs"
	"github.com/five82/bookclub/internal/state"
	"github.com/five82/bookclub/internal/ui"
)

// Options configure the bookclub application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/bookclub/prefs.toml
	LogPath    string // file the log view tails; empty uses the config's log dir
	PollEvery  int    // seconds; zero uses default
}

// Run boots the bookclub TUI until the context is cancelled or the user
// quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logPath := opts.LogPath
	if logPath == "" {
		logPath = cfg.LogPath()
	}
	logFile, err := openLog(logPath)
	if err != nil {
		return err
	}
	defer logFile.Close()

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	books, err := library.NewClient(cfg.OpenLibraryURL,
		library.WithDescriptionWorkers(cfg.DescriptionWorkers))
	if err != nil {
		return fmt.Errorf("init library client: %w", err)
	}

	llm, err := ollama.NewClient(cfg.OllamaURL, cfg.OllamaModel)
	if err != nil {
		return fmt.Errorf("init ollama client: %w", err)
	}

	store := &state.Store{}

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	// Start background poller
	StartPoller(ctx, store, llm, interval)
	go logStartupChecks(ctx, books, llm)

	themeName := userPrefs.Theme
	if cfg.Theme != "" {
		themeName = cfg.Theme
	}
	uiOpts := ui.Options{
		Context:     ctx,
		Searcher:    books,
		Analyzer:    llm,
		Store:       store,
		Config:      &cfg,
		Prefs:       userPrefs,
		ThemeName:   themeName,
		PrefsPath:   opts.PrefsPath,
		LogPath:     logPath,
		SearchLimit: cfg.SearchLimit,
	}
	return ui.Run(uiOpts)
}

// openLog sends the standard logger to path; the TUI owns the terminal.
func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := tea.LogToFile(path, "bookclub")
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return f, nil
}

// logStartupChecks records whether both upstream services answer.
func logStartupChecks(ctx context.Context, books *library.Client, llm *ollama.Client) {
	ok, status := llm.CheckAvailability(ctx)
	log.Printf("ollama %s at %s: available=%t (%s)", llm.Model(), llm.Endpoint(), ok, status)

	if err := books.Ping(ctx); err != nil {
		log.Printf("open library check failed: %v", err)
		return
	}
	log.Printf("open library reachable at %s", books.BaseURL())
}
