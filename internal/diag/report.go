package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Status is the outcome of one check.
type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	default:
		return "FAIL"
	}
}

// Check is one line of the checklist.
type Check struct {
	Name   string
	Status Status
	Detail string
}

func pass(name, detail string) Check { return Check{Name: name, Status: StatusPass, Detail: detail} }
func warn(name, detail string) Check { return Check{Name: name, Status: StatusWarn, Detail: detail} }
func fail(name, detail string) Check { return Check{Name: name, Status: StatusFail, Detail: detail} }

// Report collects the checks of one run.
type Report struct {
	Checks []Check
	Model  string
}

// Passed counts checks that did not fail. Warnings count as passed.
func (r Report) Passed() int {
	n := 0
	for _, c := range r.Checks {
		if c.Status != StatusFail {
			n++
		}
	}
	return n
}

// OK reports whether no check failed.
func (r Report) OK() bool {
	return r.Passed() == len(r.Checks)
}

// Recommendations lists a next step for every failed check.
func (r Report) Recommendations() []string {
	var out []string
	for _, c := range r.Checks {
		if c.Status != StatusFail {
			continue
		}
		switch c.Name {
		case CheckConfig:
			out = append(out, "Fix the config file or the BOOKCLUB_* / OLLAMA_* environment variables")
		case CheckInstallation:
			out = append(out, "Install Ollama from https://ollama.ai")
		case CheckModels:
			out = append(out, "Pull the model: ollama pull "+r.Model)
		case CheckService, CheckGeneration:
			out = append(out, "Start the model server: ollama serve")
		case CheckLibrary:
			out = append(out, "Check your network connection to openlibrary.org")
		case CheckEnvFile:
			out = append(out, "Make the .env file readable or remove it")
		}
	}
	return dedupe(out)
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, s := range items {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
)

func badge(s Status) string {
	switch s {
	case StatusPass:
		return passStyle.Render("✅ PASS")
	case StatusWarn:
		return warnStyle.Render("⚠️  WARN")
	default:
		return failStyle.Render("❌ FAIL")
	}
}

// WriteCheck prints one check and its detail.
func WriteCheck(w io.Writer, c Check) {
	fmt.Fprintf(w, "%s %s\n", badge(c.Status), c.Name)
	if c.Detail != "" {
		fmt.Fprintf(w, "    %s\n", detailStyle.Render(c.Detail))
	}
}

// Write prints the checklist, a summary and any recommendations.
func (r Report) Write(w io.Writer) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, headerStyle.Render("🧪 BOOKCLUB SETUP CHECK"))
	fmt.Fprintln(w, rule)
	for _, c := range r.Checks {
		WriteCheck(w, c)
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "📊 RESULTS: %d/%d checks passed\n", r.Passed(), len(r.Checks))

	if r.OK() {
		fmt.Fprintln(w, passStyle.Render("🎉 All checks passed. Run: bookclub"))
		return
	}
	fmt.Fprintln(w, failStyle.Render(fmt.Sprintf("⚠️  %d issues found.", len(r.Checks)-r.Passed())))
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("🔧 NEXT STEPS"))
	for i, rec := range r.Recommendations() {
		fmt.Fprintf(w, "%d. %s\n", i+1, rec)
	}
}
