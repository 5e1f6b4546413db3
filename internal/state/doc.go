// Package state holds the data shared between the background status poller
// and the TUI.
//
// The Store is safe to use as a zero value. It keeps two things behind one
// RWMutex:
//
//   - the current search Session: genre, books, selected book, and the
//     latest analysis for it
//   - the model server status written by the poller
//
// A search session is replaced wholesale. BeginSearch hands out a session
// ID; FinishSearch rejects results whose ID is no longer the pending one, so
// a slow search can never overwrite a newer one. SetAnalysis applies the
// same rule to analyses, keyed by session ID and book index.
//
// Snapshot returns a copy: book slices, model lists, the analysis, and the
// last error are all cloned, so the UI can read it without holding the lock.
//
// Status updates follow the poller's rules. A failed poll keeps the previous
// status, records the error, and bumps ConsecutiveFailures; IsOffline
// reports two or more failures in a row.
package state
