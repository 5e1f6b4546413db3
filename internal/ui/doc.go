// Package ui provides the terminal interface for bookclub.
//
// The UI is a Bubble Tea program. Model holds view state and reads everything
// it shows from a state.Store snapshot, refreshed on a tick. Searches and
// analyses run as tea.Cmds; their results come back as messages carrying the
// session ID they were started for, and the store drops any that arrive after
// the user has moved on.
//
// # Views
//
//   - Genres: preset genres plus a free-text custom genre
//   - Books: the current search as a list with a detail pane
//   - Results: the whole search as one Markdown block
//   - Analysis: the generated summary, questions, guide, or recommendations
//   - Logs: the application log, tailed
//
// # Key Bindings
//
//   - tab / shift+tab: Cycle views
//   - s, b, r, a, l: Genres, Books, Results, Analysis, Logs
//   - /: Custom genre
//   - enter or x: Search (genres) or analyze the selected book
//   - m: Cycle analysis mode
//   - R: Repeat the last search
//   - T: Cycle theme
//   - f: Toggle log follow
//   - h or ?: Help
//   - e or Ctrl+C: Exit
//
// Theme, last genre and analysis mode persist through the prefs package.
package ui
