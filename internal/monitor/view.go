package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/neubot/nbwatch/internal/render"
	"github.com/neubot/nbwatch/internal/ui"
)

// defaultWidth is used before the first WindowSizeMsg.
const defaultWidth = 80

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if !m.received {
		b.WriteString(m.renderWaiting())
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
		return b.String()
	}

	b.WriteString(m.renderDaemonSection())
	b.WriteString("\n")
	b.WriteString(m.renderDetailSection())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title with agent version, session age and the
// time of the last update.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("nbwatch")

	parts := []string{}
	if m.version != "" {
		parts = append(parts, m.version)
	}
	if m.agentVersion != "" {
		parts = append(parts, "agent "+m.agentVersion)
	}
	parts = append(parts, "session: "+m.SessionAge())
	if last := m.LastUpdate(); last != "" {
		parts = append(parts, "updated "+strings.ReplaceAll(last, "\n", " "))
	}

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(" | " + strings.Join(parts, " | "))

	return HeaderStyle.Render(title + stats)
}

// renderWaiting is shown until the first state document arrives.
func (m Model) renderWaiting() string {
	lines := []string{m.spinner.View()}
	if m.endpoint != "" {
		lines = append(lines, LabelStyle.Render("  "+m.endpoint))
	}
	return strings.Join(lines, "\n")
}

func (m Model) sectionWidth() int {
	if m.width == 0 {
		return defaultWidth
	}
	return m.width
}

// daemonSectionHeight is the number of rows renderDaemonSection produces.
func (m Model) daemonSectionHeight() int {
	return 3 + len(m.activities)
}

// renderDaemonSection renders the agent status and, while it runs, the
// activity list with the current entry highlighted.
func (m Model) renderDaemonSection() string {
	box := frame(m.sectionWidth())

	var status, label string
	if m.active {
		status = "running"
		label = StatusRunningStyle.Render(StatusRunning) + " " + ValueStyle.Render(render.RunningMessage)
	} else {
		status = "idle"
		label = StatusIdleStyle.Render(StatusIdle) + " " + ValueStyle.Render(render.IdleMessage)
	}

	lines := []string{
		box.top("Agent", status),
		box.row(label),
	}
	for _, a := range m.activities {
		var item string
		if a.Current {
			item = ActivityCurrentStyle.Render(ui.SymbolCurrent + " " + a.Label)
		} else {
			item = ActivityStyle.Render("  " + a.Label)
		}
		lines = append(lines, box.row(item))
	}
	lines = append(lines, box.bottom())

	return strings.Join(lines, "\n")
}

// renderDetailSection frames the scrollable detail viewport.
func (m Model) renderDetailSection() string {
	box := frame(m.sectionWidth())

	title := render.DetailHeading(m.testActive)
	name := ""
	if m.test != nil {
		name = m.test.Name
	} else {
		title = "Details"
	}

	lines := []string{box.top(title, name)}
	for _, line := range strings.Split(m.detail.View(), "\n") {
		lines = append(lines, box.row(line))
	}
	lines = append(lines, box.bottom())

	return strings.Join(lines, "\n")
}

// renderDetailContent builds the viewport content: one line per task.
func (m Model) renderDetailContent() string {
	if m.test == nil {
		return LabelStyle.Render("No test details reported yet")
	}
	if len(m.test.Tasks) == 0 {
		return LabelStyle.Render("No tasks")
	}

	lines := make([]string, 0, len(m.test.Tasks))
	for _, task := range m.test.Tasks {
		line := ui.TaskStyle(task.State).Render(ui.TaskSymbol(task.State)) + " " +
			ValueStyle.Render(task.Label+" test "+task.State)
		if r, ok := m.test.ResultFor(task.Label); ok {
			line += LabelStyle.Render(": ") + ResultStyle.Render(r.String())
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderFooter renders the poll status line and key hints.
func (m Model) renderFooter() string {
	var status string
	if m.failure != "" {
		status = StatusOfflineStyle.Render(StatusOffline + " " + m.failure + " (retrying in " + m.retryIn.String() + ")")
	}

	if !m.ShowFooter() {
		return status
	}
	hints := FooterStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
	if status == "" {
		return hints
	}
	return status + "\n" + hints
}

// ShowFooter returns true if the terminal is tall enough for key hints.
func (m Model) ShowFooter() bool {
	return m.height == 0 || m.height >= HeightMinimal
}
