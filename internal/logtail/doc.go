// Package logtail reads the end of the bookclub log file for the TUI.
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays
// bounded no matter how large the file grows. A missing file is not an
// error; it simply has no lines yet.
//
// Parse splits a standard library log line ("2006/01/02 15:04:05 msg")
// into its timestamp and message and guesses a severity from the message
// text, which the UI uses to pick colors:
//
//	for _, line := range lines {
//		e := logtail.Parse(line)
//		render(e.Time, e.Message, e.Level)
//	}
package logtail
