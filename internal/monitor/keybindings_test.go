package monitor

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDefaultKeyMap(t *testing.T) {
	k := DefaultKeyMap()

	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
	}{
		{"q quits", runes("q"), k.Quit},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, k.Quit},
		{"? toggles help", runes("?"), k.Help},
		{"k scrolls up", runes("k"), k.Up},
		{"up arrow scrolls up", tea.KeyMsg{Type: tea.KeyUp}, k.Up},
		{"j scrolls down", runes("j"), k.Down},
		{"down arrow scrolls down", tea.KeyMsg{Type: tea.KeyDown}, k.Down},
		{"g jumps to top", runes("g"), k.Top},
		{"G jumps to bottom", runes("G"), k.Bottom},
		{"esc closes", tea.KeyMsg{Type: tea.KeyEsc}, k.Close},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, key.Matches(tt.msg, tt.binding))
		})
	}
}

func TestKeyMap_Help(t *testing.T) {
	k := DefaultKeyMap()

	assert.Len(t, k.ShortHelp(), 4)
	full := k.FullHelp()
	require.Len(t, full, 2)
	assert.Len(t, full[0], 4)
	assert.Len(t, full[1], 3)
}

func TestHandleKeyMsg_Help(t *testing.T) {
	m := sized()

	handled, _ := m.HandleKeyMsg(runes("?"))
	assert.True(t, handled)
	assert.True(t, m.showHelp)

	handled, _ = m.HandleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, handled)
	assert.False(t, m.showHelp)

	handled, _ = m.HandleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, handled, "esc does nothing without the overlay")
}

func TestHandleKeyMsg_Scroll(t *testing.T) {
	m := sized()
	m.test = speedtest()
	m.detail.Height = 1
	m.detail.SetContent(m.renderDetailContent())

	handled, _ := m.HandleKeyMsg(runes("j"))
	assert.True(t, handled)
	assert.Equal(t, 1, m.detail.YOffset)

	m.HandleKeyMsg(runes("G"))
	assert.Equal(t, 2, m.detail.YOffset)

	m.HandleKeyMsg(runes("k"))
	assert.Equal(t, 1, m.detail.YOffset)

	m.HandleKeyMsg(runes("g"))
	assert.Equal(t, 0, m.detail.YOffset)

	m.HandleKeyMsg(runes("k"))
	assert.Equal(t, 0, m.detail.YOffset, "offset is clamped at the top")
}

func TestHandleKeyMsg_Unknown(t *testing.T) {
	m := sized()
	handled, cmd := m.HandleKeyMsg(runes("x"))

	assert.False(t, handled)
	assert.Nil(t, cmd)
}
