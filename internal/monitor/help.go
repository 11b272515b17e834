package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	overlayBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Background(ColorSurfaceBg).
			Padding(1, 2)

	overlayTitle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
)

// renderHelpOverlay lists every key binding, and the agent being watched,
// in a box centered on screen.
func (m Model) renderHelpOverlay() string {
	lines := []string{overlayTitle.Render("Keyboard Shortcuts"), ""}
	lines = append(lines, m.help.FullHelpView(m.keys.FullHelp()), "")
	if m.endpoint != "" {
		lines = append(lines, LabelStyle.Render("Watching "+m.endpoint))
	}
	lines = append(lines, LabelStyle.Render("Press ? to close"))
	box := overlayBox.Render(strings.Join(lines, "\n"))

	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(ColorDarkBg),
	)
}
