package tui

import "github.com/charmbracelet/lipgloss"

// GitHub-dark palette; no colour literals outside this file.
var (
	colorBgSurface = lipgloss.Color("#1c2128")

	colorText      = lipgloss.Color("#e6edf3")
	colorTextDim   = lipgloss.Color("#8b949e")
	colorTextMuted = lipgloss.Color("#484f58")

	colorBlue   = lipgloss.Color("#58a6ff")
	colorGreen  = lipgloss.Color("#3fb950")
	colorRed    = lipgloss.Color("#f85149")
	colorYellow = lipgloss.Color("#d29922")
	colorPurple = lipgloss.Color("#bc8cff")

	colorDivider = lipgloss.Color("#30363d")
)

var (
	headerBarStyle = lipgloss.NewStyle().
			Background(colorBgSurface).
			Foreground(colorText).
			Padding(0, 1)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	headerSepStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	headerMetaStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	subscribedStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	unsubscribedStyle = lipgloss.NewStyle().Foreground(colorRed)
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDivider).
			Padding(0, 1)

	accountTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	trendTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPurple)

	labelStyle = lipgloss.NewStyle().Foreground(colorTextDim)
	valueStyle = lipgloss.NewStyle().Foreground(colorText)
	keyStyle   = lipgloss.NewStyle().Foreground(colorTextMuted)

	thresholdStyle = lipgloss.NewStyle().Foreground(colorYellow)
	emptyStyle     = lipgloss.NewStyle().Foreground(colorTextDim).Italic(true).Padding(1, 2)
	errorStyle     = lipgloss.NewStyle().Foreground(colorRed)
	historyStyle   = lipgloss.NewStyle().Foreground(colorTextDim)
)

var (
	matrixHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorTextDim)
	highlightCellStyle = lipgloss.NewStyle().
				Foreground(colorBgSurface).
				Background(colorYellow).
				Bold(true)
)
