package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/bookclub/internal/logtail"
)

const logFetchLimit = 500

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return logLinesMsg{}
		}
		lines, err := logtail.Read(path, logFetchLimit)
		return logLinesMsg{lines: lines, err: err}
	}
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	if msg.err != nil {
		m.setError(fmt.Errorf("read log: %w", msg.err))
		return
	}
	m.logLines = msg.lines
	m.updateLogViewport()
}

// updateLogViewport renders the cached lines and follows the tail.
func (m *Model) updateLogViewport() {
	m.logViewport.SetContent(m.renderLogContent())
	if m.logFollow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	if len(m.logLines) == 0 {
		return styles.MutedText.Render("No log entries yet.")
	}
	width := max(m.logViewport.Width, 1)
	out := make([]string, 0, len(m.logLines))
	for _, line := range m.logLines {
		e := logtail.Parse(line)
		style := styles.Text
		switch e.Level {
		case logtail.LevelWarn:
			style = styles.WarningText
		case logtail.LevelError:
			style = styles.DangerText
		}
		var b strings.Builder
		if e.Time != "" {
			b.WriteString(styles.FaintText.Render(e.Time))
			b.WriteString(" ")
		}
		b.WriteString(style.Render(e.Message))
		out = append(out, lipgloss.NewStyle().MaxWidth(width).Render(b.String()))
	}
	return strings.Join(out, "\n")
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	follow := "paused"
	if m.logFollow {
		follow = "following"
	}
	title := fmt.Sprintf("Log (%d lines, %s)", len(m.logLines), follow)
	return m.renderBox(title, m.logViewport.View(), m.width, m.contentHeight(), true)
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logFollow = !m.logFollow
		if m.logFollow {
			m.logViewport.GotoBottom()
			return m, readLogsCmd(m.logPath)
		}
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logFollow = true
		return m, nil
	}
	if scrollViewport(&m.logViewport, msg, m.keys) {
		m.logFollow = false
	}
	return m, nil
}
