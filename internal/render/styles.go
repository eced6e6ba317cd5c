package render

import "github.com/charmbracelet/lipgloss"

var (
	colorText    lipgloss.Color = "#cdd6f4"
	colorMuted   lipgloss.Color = "#a6adc8"
	colorBorder  lipgloss.Color = "#585b70"
	colorAccent  lipgloss.Color = "#89b4fa"
	colorMauve   lipgloss.Color = "#cba6f7"
	colorPeach   lipgloss.Color = "#fab387"
	colorGreen   lipgloss.Color = "#a6e3a1"
	colorSurface lipgloss.Color = "#313244"
)

var (
	h1Style = lipgloss.NewStyle().Foreground(colorMauve).Bold(true).Underline(true)
	h2Style = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	hNStyle = lipgloss.NewStyle().Foreground(colorText).Bold(true)

	emphStyle   = lipgloss.NewStyle().Italic(true)
	strongStyle = lipgloss.NewStyle().Bold(true)
	strikeStyle = lipgloss.NewStyle().Strikethrough(true)
	codeStyle   = lipgloss.NewStyle().Foreground(colorPeach).Background(colorSurface)
	linkStyle   = lipgloss.NewStyle().Foreground(colorAccent).Underline(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	quoteStyle  = lipgloss.NewStyle().Foreground(colorBorder)
	ruleStyle   = lipgloss.NewStyle().Foreground(colorBorder)
	markerStyle = lipgloss.NewStyle().Foreground(colorGreen)
	blockStyle  = lipgloss.NewStyle().Foreground(colorText)
	labelStyle  = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
)

func headingStyle(level int) lipgloss.Style {
	switch level {
	case 1:
		return h1Style
	case 2:
		return h2Style
	default:
		return hNStyle
	}
}
