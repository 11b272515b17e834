package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/neubot/nbwatch/internal/ui"
)

// Dashboard colors, taken from the shared palette.
const (
	ColorDarkBg        = ui.ColorDeepVoid
	ColorSurfaceBg     = ui.ColorDarkSurface
	ColorTextSecondary = ui.ColorSecondary
	ColorAccent        = ui.ColorNeonPink
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ui.ColorPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().Foreground(ColorTextSecondary)
	ValueStyle = lipgloss.NewStyle().Foreground(ui.ColorPrimary)

	StatusRunningStyle = lipgloss.NewStyle().Foreground(ui.ColorSuccess).Bold(true)
	StatusIdleStyle    = lipgloss.NewStyle().Foreground(ColorTextSecondary)
	StatusOfflineStyle = lipgloss.NewStyle().Foreground(ui.ColorError)

	ActivityStyle        = lipgloss.NewStyle().Foreground(ui.ColorMuted)
	ActivityCurrentStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	ResultStyle = lipgloss.NewStyle().Foreground(ui.ColorNeonCyan)

	frameBorder = lipgloss.NewStyle().Foreground(ui.ColorGlassBorder)
	frameTitle  = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	frameValue  = lipgloss.NewStyle().Foreground(ui.ColorNeonCyan).Bold(true)
)

// Glyphs for the agent status line.
const (
	StatusRunning = "◉"
	StatusIdle    = "◌"
	StatusOffline = "✕"
)

// frame draws a rounded box of a fixed outer width, one row at a time:
//
//	╭─ Title ─────────── value ╮
//	│ content                  │
//	╰──────────────────────────╯
type frame int

// top is the title row: title on the left, value on the right.
func (f frame) top(title, value string) string {
	w := max(int(f), 10)
	// "╭─ " title " " fill " " value " ╮"
	fill := max(w-(3+lipgloss.Width(title)+1)-(1+lipgloss.Width(value)+2), 1)
	return frameBorder.Render("╭─ ") +
		frameTitle.Render(title) +
		frameBorder.Render(" "+strings.Repeat("─", fill)+" ") +
		frameValue.Render(value) +
		frameBorder.Render(" ╮")
}

// row pads content between the side borders.
func (f frame) row(content string) string {
	w := max(int(f), 4)
	pad := max(w-4-lipgloss.Width(content), 0)
	side := frameBorder.Render("│")
	return side + " " + content + strings.Repeat(" ", pad) + " " + side
}

func (f frame) bottom() string {
	w := max(int(f), 2)
	return frameBorder.Render("╰" + strings.Repeat("─", w-2) + "╯")
}
