package render

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/neubot/nbwatch/internal/state"
	"github.com/stretchr/testify/assert"
)

var stampPattern = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}\] `)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestDaemonText(t *testing.T) {
	assert.Equal(t, IdleMessage, DaemonText(false, []state.Activity{{Label: "idle", Current: true}}))

	got := DaemonText(true, []state.Activity{
		{Label: "idle"},
		{Label: "test", Current: true},
	})
	assert.Equal(t, "Neubot is currently running.\n  idle\n▸ test", got)
}

func TestDetailText(t *testing.T) {
	got := DetailText(speedtest(), false)

	lines := strings.Split(got, "\n")
	assert.Equal(t, []string{
		"Details on latest test: speedtest",
		"  ● latency test done: 12.3 ms",
		"  ● download test done: 12.345 Mbit/s",
		"  ◆ upload test running",
	}, lines)
}

func TestText_WritesTimestampedRegions(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf, nil)

	r.RenderDaemonState(true, []state.Activity{{Label: "test", Current: true}})

	out := buf.String()
	assert.Regexp(t, stampPattern, out)
	assert.Contains(t, out, RunningMessage)
	assert.Contains(t, out, "▸ test")
}

func TestText_SuppressesUnchangedRegions(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf, nil)

	r.RenderDaemonState(false, nil)
	r.RenderTestDetail(speedtest(), false)
	first := buf.Len()

	r.RenderDaemonState(false, nil)
	r.RenderTestDetail(speedtest(), false)
	assert.Equal(t, first, buf.Len(), "identical state should not be written again")

	r.RenderDaemonState(true, []state.Activity{{Label: "negotiate", Current: true}})
	assert.Greater(t, buf.Len(), first)
	assert.Equal(t, 1, strings.Count(buf.String(), "Details on latest test"))
}

func TestText_NilTestLeavesDetail(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf, nil)

	r.RenderTestDetail(nil, true)
	assert.Empty(t, buf.String())
}

func TestText_PollFailed(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf, nil)

	r.RenderDaemonState(false, nil)
	r.PollFailed(errors.New("connection refused"), 2*time.Second)
	r.RenderDaemonState(false, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3, "the state is printed again after a failure")
	assert.Contains(t, lines[1], "⚠ connection refused (retrying in 2s)")
	assert.Contains(t, lines[2], IdleMessage)
}
