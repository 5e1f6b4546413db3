package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Level is the severity inferred from a log message.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// Entry is one parsed log line.
type Entry struct {
	Time    string
	Message string
	Level   Level
}

// stdlib log.LstdFlags header, optionally behind a log.SetPrefix word:
// "bookclub 2006/01/02 15:04:05 ".
var timestampPrefix = regexp.MustCompile(`^(?:\S+ )?(\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}(?:\.\d+)?) (.*)$`)

var (
	errorWords = []string{"failed", "error", "panic", "refused"}
	warnWords  = []string{"retrying", "timeout", "timed out", "no books", "unavailable", "stale"}
)

// Parse splits a log line into timestamp and message and guesses its level.
// Lines without a timestamp keep the whole text as the message.
func Parse(line string) Entry {
	entry := Entry{Message: line}
	if m := timestampPrefix.FindStringSubmatch(line); m != nil {
		entry.Time = m[1]
		entry.Message = m[2]
	}
	lower := strings.ToLower(entry.Message)
	switch {
	case containsAny(lower, errorWords):
		entry.Level = LevelError
	case containsAny(lower, warnWords):
		entry.Level = LevelWarn
	}
	return entry
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
