package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	// Base colors
	Background string // Outermost background
	Surface    string // Header and command bar
	SurfaceAlt string // Panels and input boxes

	SelectionBg   string // Cursor row background
	SelectionText string // Cursor row text

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

	// StatusColors maps badge names (checkout status, todo state, parity,
	// unread) to a color.
	StatusColors map[string]string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	fg := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	panel := func(border string) lipgloss.Style {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(border)).
			Padding(0, 1)
	}
	surface := fg(t.Text).Background(lipgloss.Color(t.Surface))

	return Styles{
		Background: lipgloss.NewStyle().Background(lipgloss.Color(t.Background)),
		Surface:    surface,
		Panel:      panel(t.Border),
		FocusPanel: panel(t.BorderFocus),

		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header:   surface.Padding(0, 1),
		Logo:     fg(t.Warning).Bold(true),
		Selected: fg(t.SelectionText).Background(lipgloss.Color(t.SelectionBg)),

		statusColors: t.StatusColors,
		background:   t.Background,
		muted:        t.Muted,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Background lipgloss.Style
	Surface    lipgloss.Style
	Panel      lipgloss.Style
	FocusPanel lipgloss.Style

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

	statusColors map[string]string
	background   string
	muted        string
}

// StatusStyle returns a badge style for the given status.
func (s Styles) StatusStyle(status string) lipgloss.Style {
	color := s.statusColors[status]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// WithBackground returns a copy of Styles whose text styles carry bgColor
// explicitly instead of inheriting the terminal background.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	out.Background = s.Background.Background(bg)
	out.Surface = s.Surface.Background(bg)
	out.Text = s.Text.Background(bg)
	out.MutedText = s.MutedText.Background(bg)
	out.FaintText = s.FaintText.Background(bg)
	out.AccentText = s.AccentText.Background(bg)
	out.SuccessText = s.SuccessText.Background(bg)
	out.WarningText = s.WarningText.Background(bg)
	out.DangerText = s.DangerText.Background(bg)
	out.InfoText = s.InfoText.Background(bg)
	out.Header = s.Header.Background(bg)
	out.Logo = s.Logo.Background(bg)
	return out
}

var themes = map[string]Theme{
	"Nightfox": nightfoxTheme(),
	"Kanagawa": kanagawaTheme(),
	"Slate":    slateTheme(),
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

// GetTheme returns a theme by name, falling back to Nightfox.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return nightfoxTheme()
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

func nightfoxTheme() Theme {
	// Nightfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name: "Nightfox",

		Background: "#131a24", // bg0
		Surface:    "#192330", // bg1
		SurfaceAlt: "#212e3f", // bg2

		SelectionBg:   "#2b3b51", // sel0
		SelectionText: "#cdcecf", // fg1

		Border:      "#39506d", // bg4
		BorderFocus: "#719cd6", // blue

		Text:    "#cdcecf",
		Muted:   "#738091",
		Faint:   "#71839b",
		Accent:  "#719cd6",
		Success: "#81b29a",
		Warning: "#dbc074",
		Danger:  "#c94f6d",
		Info:    "#63cdcf",

		StatusColors: map[string]string{
			"successful": "#81b29a", // green
			"failed":     "#c94f6d", // red
			"done":       "#71839b", // fg3
			"open":       "#719cd6", // blue
			"unread":     "#f4a261", // orange
			"even":       "#63cdcf", // cyan
			"odd":        "#9d79d6", // magenta
		},
	}
}

func kanagawaTheme() Theme {
	// Kanagawa palette: https://github.com/rebelot/kanagawa.nvim
	return Theme{
		Name: "Kanagawa",

		Background: "#16161D", // sumiInk0
		Surface:    "#1F1F28", // sumiInk3
		SurfaceAlt: "#2A2A37", // sumiInk4

		SelectionBg:   "#2D4F67", // waveBlue1
		SelectionText: "#DCD7BA", // fujiWhite

		Border:      "#54546D", // sumiInk6
		BorderFocus: "#7E9CD8", // crystalBlue

		Text:    "#DCD7BA",
		Muted:   "#C8C093",
		Faint:   "#727169",
		Accent:  "#7E9CD8",
		Success: "#98BB6C",
		Warning: "#E6C384",
		Danger:  "#E46876",
		Info:    "#7FB4CA",

		StatusColors: map[string]string{
			"successful": "#98BB6C", // springGreen
			"failed":     "#E46876", // waveRed
			"done":       "#727169", // fujiGray
			"open":       "#7E9CD8", // crystalBlue
			"unread":     "#E6C384", // carpYellow
			"even":       "#7FB4CA", // springBlue
			"odd":        "#957FB8", // oniViolet
		},
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",

		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900
		SurfaceAlt: "#1e293b", // slate-800

		SelectionBg:   "#0284c7", // sky-600
		SelectionText: "#f8fafc", // slate-50

		Border:      "#334155", // slate-700
		BorderFocus: "#38bdf8", // sky-400

		Text:    "#f1f5f9",
		Muted:   "#94a3b8",
		Faint:   "#64748b",
		Accent:  "#38bdf8",
		Success: "#22c55e",
		Warning: "#f59e0b",
		Danger:  "#ef4444",
		Info:    "#06b6d4",

		StatusColors: map[string]string{
			"successful": "#16a34a", // green-600
			"failed":     "#dc2626", // red-600
			"done":       "#64748b", // slate-500
			"open":       "#0ea5e9", // sky-500
			"unread":     "#f59e0b", // amber-500
			"even":       "#22d3ee", // cyan-400
			"odd":        "#a78bfa", // violet-400
		},
	}
}
