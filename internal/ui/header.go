package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/bookclub/internal/library"
)

// renderHeader renders the status bar: logo, model state, session summary.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{
		bg.Render("bookclub", styles.Logo),
		m.renderModelIndicator(styles, bg),
	}

	parts = append(parts,
		bg.Render("Mode:", styles.MutedText)+bg.Spaces(1)+
			bg.Render(m.kind.Label(), styles.AccentText),
	)

	session := m.snapshot.Session
	if session.Genre != "" {
		parts = append(parts,
			bg.Render("Genre:", styles.MutedText)+bg.Spaces(1)+
				bg.Render(library.NormalizeGenre(session.Genre), styles.Text)+bg.Spaces(1)+
				bg.Render(fmt.Sprintf("(%d)", len(session.Books)), styles.FaintText),
		)
	}

	if ts := m.formatTimestamp(); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	content := ""
	for i, p := range parts {
		if i > 0 {
			content += sep
		}
		content += p
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(content)
}

// renderModelIndicator shows whether the local model can serve analyses.
func (m Model) renderModelIndicator(styles Styles, bg BgStyle) string {
	snap := m.snapshot
	switch {
	case snap.IsOffline():
		text := "● Ollama offline"
		if m.config != nil && m.config.OllamaURL != "" && m.width >= 100 {
			text += " (" + truncateMiddle(m.config.OllamaURL, 40) + ")"
		}
		return bg.Render(text, styles.DangerText)
	case !snap.HasModel:
		return bg.Render("● checking Ollama...", styles.WarningText)
	case snap.Model.Available:
		return bg.Render("● "+snap.Model.Text, styles.SuccessText)
	default:
		return bg.Render("● "+truncate(snap.Model.Text, 60), styles.WarningText)
	}
}

// formatTimestamp formats the last search time with a relative hint.
func (m Model) formatTimestamp() string {
	at := m.snapshot.Session.SearchedAt
	if at.IsZero() {
		return ""
	}

	since := time.Since(at)
	out := at.Format("15:04:05")
	switch {
	case since < time.Minute:
		out += " (now)"
	case since < time.Hour:
		out += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		out += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return out
}

// renderCommandBar lists the keys that matter in the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	type cmd struct{ key, desc string }
	var cmds []cmd
	switch m.currentView {
	case ViewGenres:
		if m.editingGenre {
			cmds = []cmd{{"enter", "Search"}, {"esc", "Cancel"}}
		} else {
			cmds = []cmd{{"enter", "Search"}, {"/", "Custom"}, {"j/k", "Move"}}
		}
	case ViewBooks:
		cmds = []cmd{{"enter", "Analyze"}, {"m", "Mode"}, {"j/k", "Select"}, {"r", "Results"}, {"R", "Search again"}}
	case ViewResults:
		cmds = []cmd{{"j/k", "Scroll"}, {"b", "Books"}}
	case ViewAnalysis:
		cmds = []cmd{{"enter", "Regenerate"}, {"m", "Mode"}, {"j/k", "Scroll"}, {"b", "Books"}}
	case ViewLogs:
		follow := "Follow"
		if m.logFollow {
			follow = "Pause"
		}
		cmds = []cmd{{"f", follow}, {"j/k", "Scroll"}}
	}
	cmds = append(cmds, cmd{"tab", "Views"}, cmd{"T", m.theme.Name}, cmd{"?", "Help"}, cmd{"e", "Quit"})

	content := ""
	for i, c := range cmds {
		if i > 0 {
			content += bg.Spaces(2)
		}
		content += bg.Render(c.key, styles.AccentText) + bg.Render(":"+c.desc, styles.MutedText)
	}
	return bg.FillLine(content, m.width)
}
