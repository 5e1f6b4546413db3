package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/five82/bookclub/internal/library"
	"github.com/five82/bookclub/internal/ollama"
)

// NoSelection is Session.Selected when no book is picked.
const NoSelection = -1

var (
	// ErrNoSession is returned when selecting before any search finished.
	ErrNoSession = errors.New("no search results yet")
	// ErrStale means a result arrived for a search or selection that has
	// since been replaced.
	ErrStale = errors.New("result is stale")
)

// Session is one search and what the user did with it.
type Session struct {
	ID         uuid.UUID
	Genre      string
	Books      []library.Book
	SearchedAt time.Time
	Selected   int
	Analysis   *ollama.Result
}

// SelectedBook returns a copy of the picked book.
func (s Session) SelectedBook() (*library.Book, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Books) {
		return nil, false
	}
	book := s.Books[s.Selected]
	return &book, true
}

// ModelStatus is the latest view of the model server.
type ModelStatus struct {
	Available bool // server up and model pulled
	Text      string
	Models    []string
	CheckedAt time.Time
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Session     Session
	Pending     uuid.UUID // search in flight, uuid.Nil when idle
	SearchError error

	Model               ModelStatus
	HasModel            bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive status poll failures
}

// IsOffline returns true when the model server has been unreachable for
// multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Searching reports whether a search is in flight.
func (s Snapshot) Searching() bool {
	return s.Pending != uuid.Nil
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// BeginSearch records a new search and returns its session ID. Results for
// any earlier search are discarded from now on.
func (s *Store) BeginSearch() uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Pending = id
	s.snapshot.SearchError = nil
	return id
}

// FinishSearch replaces the session wholesale with the outcome of search id.
// A failed search leaves an empty session for genre and records err.
func (s *Store) FinishSearch(id uuid.UUID, genre string, books []library.Book, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.snapshot.Pending {
		return ErrStale
	}
	s.snapshot.Pending = uuid.Nil
	s.snapshot.Session = Session{
		ID:         id,
		Genre:      genre,
		Books:      cloneBooks(books),
		SearchedAt: time.Now(),
		Selected:   NoSelection,
	}
	if err != nil {
		s.snapshot.Session.Books = nil
	}
	s.snapshot.SearchError = err
	return nil
}

// Select picks the book at index i of the current session and clears any
// previous analysis.
func (s *Store) Select(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &s.snapshot.Session
	if sess.ID == uuid.Nil {
		return ErrNoSession
	}
	if i < 0 || i >= len(sess.Books) {
		return fmt.Errorf("invalid book selection %d", i+1)
	}
	if sess.Selected != i {
		sess.Analysis = nil
	}
	sess.Selected = i
	return nil
}

// SetAnalysis attaches res to session id when book i is still selected.
func (s *Store) SetAnalysis(id uuid.UUID, i int, res ollama.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &s.snapshot.Session
	if sess.ID != id || sess.Selected != i {
		return ErrStale
	}
	sess.Analysis = &res
	return nil
}

// UpdateModel records a status poll. When err is non-nil the previous status
// is kept but the error is recorded for visibility.
func (s *Store) UpdateModel(status *ModelStatus, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	if status != nil {
		s.snapshot.Model = *status
		s.snapshot.Model.Models = cloneStrings(status.Models)
		s.snapshot.HasModel = true
	} else {
		s.snapshot.HasModel = false
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Session.Books = cloneBooks(s.snapshot.Session.Books)
	if s.snapshot.Session.ID == uuid.Nil {
		snap.Session.Selected = NoSelection
	}
	if a := s.snapshot.Session.Analysis; a != nil {
		dup := *a
		snap.Session.Analysis = &dup
	}
	snap.Model.Models = cloneStrings(s.snapshot.Model.Models)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneBooks(books []library.Book) []library.Book {
	if len(books) == 0 {
		return nil
	}
	dup := make([]library.Book, len(books))
	copy(dup, books)
	return dup
}

func cloneStrings(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	return append([]string(nil), items...)
}
