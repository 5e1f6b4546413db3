package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/five82/bookclub/internal/library"
	"github.com/five82/bookclub/internal/ollama"
)

func books(titles ...string) []library.Book {
	out := make([]library.Book, 0, len(titles))
	for _, title := range titles {
		out = append(out, library.Book{Title: title, Authors: []string{"Author"}, FirstPublishYear: 2000})
	}
	return out
}

func TestStore_ZeroValueHasNoSelection(t *testing.T) {
	var s Store
	snap := s.Snapshot()
	if snap.Session.Selected != NoSelection {
		t.Fatalf("Selected = %d, want %d", snap.Session.Selected, NoSelection)
	}
	if _, ok := snap.Session.SelectedBook(); ok {
		t.Fatal("SelectedBook() ok on empty store")
	}
	if err := s.Select(0); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Select on empty store = %v, want ErrNoSession", err)
	}
}

func TestStore_SearchReplacesSessionAndClones(t *testing.T) {
	var s Store

	id := s.BeginSearch()
	if !s.Snapshot().Searching() {
		t.Fatal("Searching() = false after BeginSearch")
	}
	if err := s.FinishSearch(id, "mystery", books("A", "B"), nil); err != nil {
		t.Fatalf("FinishSearch: %v", err)
	}

	snap := s.Snapshot()
	if snap.Searching() {
		t.Fatal("Searching() = true after FinishSearch")
	}
	if snap.Session.ID != id || snap.Session.Genre != "mystery" || len(snap.Session.Books) != 2 {
		t.Fatalf("session = %#v", snap.Session)
	}
	if snap.Session.Selected != NoSelection {
		t.Fatalf("Selected = %d, want none", snap.Session.Selected)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Session.Books[0].Title = "mutated"
	if got := s.Snapshot().Session.Books[0].Title; got != "A" {
		t.Fatalf("Snapshot should clone books; got %q", got)
	}

	id2 := s.BeginSearch()
	if err := s.FinishSearch(id2, "history", books("C"), nil); err != nil {
		t.Fatalf("FinishSearch: %v", err)
	}
	snap = s.Snapshot()
	if snap.Session.Genre != "history" || len(snap.Session.Books) != 1 {
		t.Fatalf("second search should replace session wholesale; got %#v", snap.Session)
	}
}

func TestStore_StaleSearchDiscarded(t *testing.T) {
	var s Store

	first := s.BeginSearch()
	second := s.BeginSearch()
	if err := s.FinishSearch(first, "old", books("Old"), nil); !errors.Is(err, ErrStale) {
		t.Fatalf("FinishSearch(first) = %v, want ErrStale", err)
	}
	if err := s.FinishSearch(second, "new", books("New"), nil); err != nil {
		t.Fatalf("FinishSearch(second): %v", err)
	}
	if got := s.Snapshot().Session.Genre; got != "new" {
		t.Fatalf("Genre = %q, want new", got)
	}
}

func TestStore_FailedSearchClearsBooks(t *testing.T) {
	var s Store
	id := s.BeginSearch()
	_ = s.FinishSearch(id, "mystery", books("A"), nil)

	id = s.BeginSearch()
	searchErr := &library.NoBooksError{Genre: "poetry"}
	if err := s.FinishSearch(id, "poetry", nil, searchErr); err != nil {
		t.Fatalf("FinishSearch: %v", err)
	}
	snap := s.Snapshot()
	if len(snap.Session.Books) != 0 {
		t.Fatalf("books = %d, want 0", len(snap.Session.Books))
	}
	var nb *library.NoBooksError
	if !errors.As(snap.SearchError, &nb) {
		t.Fatalf("SearchError = %v, want NoBooksError", snap.SearchError)
	}
}

func TestStore_SelectAndAnalysis(t *testing.T) {
	var s Store
	id := s.BeginSearch()
	_ = s.FinishSearch(id, "drama", books("A", "B"), nil)

	if err := s.Select(5); err == nil {
		t.Fatal("Select(5) succeeded, want error")
	}
	if err := s.Select(1); err != nil {
		t.Fatalf("Select(1): %v", err)
	}
	book, ok := s.Snapshot().Session.SelectedBook()
	if !ok || book.Title != "B" {
		t.Fatalf("SelectedBook() = %v, %v", book, ok)
	}

	res := ollama.Result{Kind: ollama.KindSummary, Text: "analysis"}
	if err := s.SetAnalysis(id, 0, res); !errors.Is(err, ErrStale) {
		t.Fatalf("SetAnalysis for unselected book = %v, want ErrStale", err)
	}
	if err := s.SetAnalysis(uuid.New(), 1, res); !errors.Is(err, ErrStale) {
		t.Fatalf("SetAnalysis for other session = %v, want ErrStale", err)
	}
	if err := s.SetAnalysis(id, 1, res); err != nil {
		t.Fatalf("SetAnalysis: %v", err)
	}
	if a := s.Snapshot().Session.Analysis; a == nil || a.Text != "analysis" {
		t.Fatalf("Analysis = %#v", a)
	}

	_ = s.Select(1)
	if s.Snapshot().Session.Analysis == nil {
		t.Fatal("reselecting the same book should keep its analysis")
	}
	_ = s.Select(0)
	if s.Snapshot().Session.Analysis != nil {
		t.Fatal("selecting another book should clear the analysis")
	}
}

func TestStore_UpdateModelErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.UpdateModel(&ModelStatus{Available: true, Text: "ok", Models: []string{"phi3:mini"}}, nil)
	prev := s.Snapshot()

	before := time.Now()
	origErr := errors.New("boom")
	s.UpdateModel(nil, origErr)

	snap := s.Snapshot()
	if snap.HasModel != prev.HasModel || snap.Model.Text != prev.Model.Text {
		t.Fatalf("model changed on error: got %#v want %#v", snap.Model, prev.Model)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}

	snap.Model.Models[0] = "mutated"
	if got := s.Snapshot().Model.Models[0]; got != "phi3:mini" {
		t.Fatalf("Snapshot should clone models; got %q", got)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	if s.Snapshot().IsOffline() {
		t.Fatal("IsOffline() = true, want false with 0 failures")
	}

	s.UpdateModel(nil, errors.New("fail 1"))
	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after 1 failure: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.UpdateModel(nil, errors.New("fail 2"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after 2 failures: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	// Success resets counter
	s.UpdateModel(&ModelStatus{Available: true}, nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}
}
