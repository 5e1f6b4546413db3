// Package httpx is the thin HTTP layer shared by the Open Library and Ollama
// clients.
//
// Every call carries its own timeout, applied through the request context,
// and fully reads the response body so callers work with a plain Response
// value. Failures that never produced a response come back as
// *TransportError, classified as connection refused, timeout, or other:
//
//	resp, err := client.Get(ctx, base+"/search.json", params, 10*time.Second)
//	switch {
//	case httpx.IsTimeout(err):
//		// report "timed out"
//	case httpx.IsConnectionRefused(err):
//		// report "server not running"
//	}
//
// The package performs no retries. Payloads that fail to decode are reported
// as *FormatError.
package httpx
