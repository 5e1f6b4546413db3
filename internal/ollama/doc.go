// Package ollama requests book analyses from a local Ollama server.
//
// A Client is bound to one generate URL and one model:
//
//	client, err := ollama.NewClient("http://localhost:11434/api/generate", "phi3:mini")
//	res, err := client.Analyze(ctx, &book, ollama.KindSummary)
//
// Analyze always runs CheckAvailability first. When the liveness check
// fails the generation request is never sent and the error is *UnavailableError,
// whose text tells the user to start the server with "ollama serve".
//
// Other failures map to distinct values:
//
//   - ErrNoBook: no book was given
//   - ErrEmptyResponse: the reply had 10 or fewer non-whitespace characters
//   - *StatusError: the server answered with a non-200 status
//   - *TimeoutError: the request exceeded AnalysisTimeout
//   - ErrConnectionRefused: nothing is listening
//   - *RequestError: anything else
//
// Successful output carries a provenance footer built by Footer. Tags lists
// pulled models from /api/tags under the same server root, for diagnostics
// and the status indicator.
package ollama
