package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors for the UI.
type Theme struct {
	Name string

	// Base colors
	Background string
	Surface    string
	SurfaceAlt string

	// Selection
	SelectionBg   string
	SelectionText string

	// Borders
	Border      string
	BorderFocus string

	// Text colors
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Surface: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		InfoText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Surface lipgloss.Style

	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style
}

// WithBackground returns a copy of Styles whose text styles carry bgColor
// instead of the terminal default.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)

	return Styles{
		Surface: s.Surface.Background(bg),

		Text:        s.Text.Background(bg),
		MutedText:   s.MutedText.Background(bg),
		FaintText:   s.FaintText.Background(bg),
		AccentText:  s.AccentText.Background(bg),
		SuccessText: s.SuccessText.Background(bg),
		WarningText: s.WarningText.Background(bg),
		DangerText:  s.DangerText.Background(bg),
		InfoText:    s.InfoText.Background(bg),

		Header:   s.Header.Background(bg),
		Logo:     s.Logo.Background(bg),
		Selected: s.Selected,
	}
}

// Theme definitions

var themes = map[string]Theme{
	"Library":  libraryTheme(),
	"Paper":    paperTheme(),
	"Midnight": midnightTheme(),
}

var themeOrder = []string{"Library", "Paper", "Midnight"}

// GetTheme returns a theme by name, falling back to Library.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return libraryTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func libraryTheme() Theme {
	// Warm leather and brass, after an old reading room.
	return Theme{
		Name: "Library",

		Background: "#1c1612",
		Surface:    "#261e18",
		SurfaceAlt: "#33281f",

		SelectionBg:   "#5a3e2b",
		SelectionText: "#f3e6d3",

		Border:      "#4a3a2c",
		BorderFocus: "#d4a359",

		Text:    "#eadcc6",
		Muted:   "#a89580",
		Faint:   "#7d6b59",
		Accent:  "#d4a359",
		Success: "#9cb071",
		Warning: "#e0b45e",
		Danger:  "#d0664f",
		Info:    "#8fb3b0",
	}
}

func paperTheme() Theme {
	// Dark ink on a cream page, for light terminals.
	return Theme{
		Name: "Paper",

		Background: "#f6f1e7",
		Surface:    "#ede6d6",
		SurfaceAlt: "#e2d9c5",

		SelectionBg:   "#c9b995",
		SelectionText: "#1f1b16",

		Border:      "#bfb29a",
		BorderFocus: "#7a4e2d",

		Text:    "#2b261f",
		Muted:   "#5f574b",
		Faint:   "#8a8172",
		Accent:  "#7a4e2d",
		Success: "#3f6f3a",
		Warning: "#9a6a12",
		Danger:  "#a53a2a",
		Info:    "#2f6479",
	}
}

func midnightTheme() Theme {
	// Tailwind CSS Slate/Indigo palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Midnight",

		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900
		SurfaceAlt: "#1e293b", // slate-800

		SelectionBg:   "#4338ca", // indigo-700
		SelectionText: "#f8fafc", // slate-50

		Border:      "#334155", // slate-700
		BorderFocus: "#818cf8", // indigo-400

		Text:    "#f1f5f9", // slate-100
		Muted:   "#94a3b8", // slate-400
		Faint:   "#64748b", // slate-500
		Accent:  "#818cf8", // indigo-400
		Success: "#22c55e", // green-500
		Warning: "#f59e0b", // amber-500
		Danger:  "#ef4444", // red-500
		Info:    "#06b6d4", // cyan-500
	}
}
