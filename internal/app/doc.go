// Package app is the composition root for bookclub.
//
// Run loads configuration and preferences, builds the Open Library and
// Ollama clients, starts the model status poller, logs a one-off startup
// check of both services, and then hands everything to the TUI, blocking
// until the user quits or the context is cancelled.
//
// The poller lists the server's models through /api/tags on a timer. A
// success resets the interval; each consecutive failure doubles it, capped
// at 30 seconds, so a stopped server is not hammered:
//
//	failures  0   1   2   3   4+
//	wait      5s  10s 20s 30s 30s
//
// Poll results land in state.Store, which the header reads for its
// model indicator. Errors are logged and never stop the poller.
package app
