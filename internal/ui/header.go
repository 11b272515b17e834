package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo is what the one-shot commands print above their output.
type HeaderInfo struct {
	Version  string // nbwatch version, e.g. "v0.2.0"
	Agent    string // agent version, empty when unknown
	Endpoint string // agent base URL
}

// HeaderWidth is the width of the divider under the header.
const HeaderWidth = 50

var (
	headerTitle   = lipgloss.NewStyle().Foreground(ColorNeonPink).Bold(true)
	headerVersion = lipgloss.NewStyle().Foreground(ColorNeonCyan)
	headerRule    = lipgloss.NewStyle().Foreground(ColorGlassBorder)
)

// RenderHeader returns the title line, the agent line when an endpoint is
// known, and a divider. Every line ends with a newline.
func RenderHeader(info HeaderInfo) string {
	title := headerTitle.Render("nbwatch")
	if info.Version != "" {
		title += " " + headerVersion.Render(info.Version)
	}
	lines := []string{title}

	if info.Endpoint != "" {
		agent := info.Endpoint
		if info.Agent != "" {
			agent += " (agent " + info.Agent + ")"
		}
		lines = append(lines, MutedStyle().Render(agent))
	}

	lines = append(lines, headerRule.Render(strings.Repeat("━", HeaderWidth)))
	return strings.Join(lines, "\n") + "\n"
}
