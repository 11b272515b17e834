package monitor

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/neubot/nbwatch/internal/state"
	"github.com/stretchr/testify/assert"
)

func TestView_WaitingForAgent(t *testing.T) {
	view := sized().View()

	assert.Contains(t, view, "nbwatch")
	assert.Contains(t, view, "v0.2.0")
	assert.Contains(t, view, "session: Less than one minute")
	assert.Contains(t, view, "Waiting for the agent...")
	assert.Contains(t, view, "http://127.0.0.1:9774")
	assert.NotContains(t, view, "updated")
}

func TestView_Running(t *testing.T) {
	m := apply(t, sized(),
		AgentVersionMsg{Version: "0.4.2"},
		DaemonStateMsg{
			Active: true,
			Activities: []state.Activity{
				{Label: "idle"},
				{Label: "negotiate", Current: true},
			},
		},
		TestDetailMsg{Test: speedtest(), Active: true},
	)

	view := m.View()

	assert.Contains(t, view, "agent 0.4.2")
	assert.Contains(t, view, "updated ")
	assert.Contains(t, view, "Neubot is currently running.")
	assert.Contains(t, view, "▸ negotiate")
	assert.Equal(t, 1, strings.Count(view, "▸"), "only the current activity is marked")
	assert.Contains(t, view, "Details on current test")
	assert.Contains(t, view, "speedtest")
	assert.Contains(t, view, "download test done: 12.345 Mbit/s")
	assert.Contains(t, view, "upload test running")
	assert.NotContains(t, view, "upload test running:")
}

func TestView_IdleShowsLatestTest(t *testing.T) {
	m := apply(t, sized(),
		DaemonStateMsg{Active: false},
		TestDetailMsg{Test: speedtest(), Active: false},
	)

	view := m.View()

	assert.Contains(t, view, "Neubot is currently idle.")
	assert.NotContains(t, view, "▸")
	assert.Contains(t, view, "Details on latest test")
}

func TestView_NoDetailYet(t *testing.T) {
	m := apply(t, sized(), DaemonStateMsg{Active: true})

	assert.Contains(t, m.View(), "No test details reported yet")
}

func TestView_PollFailureInFooter(t *testing.T) {
	m := apply(t, sized(),
		DaemonStateMsg{Active: true},
		PollFailedMsg{Err: "agent returned 502 Bad Gateway", RetryIn: 4e9},
	)

	assert.Contains(t, m.View(), "agent returned 502 Bad Gateway (retrying in 4s)")
}

func TestView_FooterHiddenWhenShort(t *testing.T) {
	m := apply(t, sized(), tea.WindowSizeMsg{Width: 80, Height: HeightMinimal - 1})
	assert.False(t, m.ShowFooter())
	assert.NotContains(t, m.View(), "quit")

	m = apply(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	assert.True(t, m.ShowFooter())
	assert.Contains(t, m.View(), "quit")
}

func TestView_HelpOverlay(t *testing.T) {
	m := apply(t, sized(), tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})

	view := m.View()
	assert.Contains(t, view, "Keyboard Shortcuts")
	assert.Contains(t, view, "scroll down")
	assert.Contains(t, view, "Press ? to close")
	assert.Contains(t, view, "Watching http://127.0.0.1:9774")
}

func TestFrame(t *testing.T) {
	box := frame(30)

	top := box.top("Agent", "running")
	assert.True(t, strings.HasPrefix(top, "╭─ Agent "))
	assert.True(t, strings.HasSuffix(top, " running ╮"))
	assert.Equal(t, 30, len([]rune(top)))

	row := frame(20).row("hello")
	assert.Equal(t, "│ hello            │", row)

	assert.Equal(t, "╰────╯", frame(6).bottom())
	assert.Equal(t, "╰╯", frame(0).bottom())
}

func TestFrame_NarrowWidthsClamp(t *testing.T) {
	assert.Equal(t, 4, len([]rune(frame(1).row(""))))
	assert.Contains(t, frame(0).top("Details", "speedtest"), "Details")
}
