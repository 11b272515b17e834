package render

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/neubot/nbwatch/internal/format"
	"github.com/neubot/nbwatch/internal/logger"
	"github.com/neubot/nbwatch/internal/state"
	"github.com/neubot/nbwatch/internal/ui"
)

// Text streams snapshots as plain lines. A region is written only when its
// content differs from what was last written, so a long poll that returns
// the same state produces no output.
type Text struct {
	mu         sync.Mutex
	w          io.Writer
	log        logger.Logger
	lastDaemon string
	lastDetail string
}

// NewText creates a plain renderer writing to w.
func NewText(w io.Writer, log logger.Logger) *Text {
	if log == nil {
		log = logger.Noop()
	}
	return &Text{w: w, log: log}
}

// RenderDaemonState writes the daemon status and, while it runs, the
// activity list with the current entry marked.
func (t *Text) RenderDaemonState(active bool, activities []state.Activity) {
	t.mu.Lock()
	defer t.mu.Unlock()

	body := DaemonText(active, activities)
	if body == t.lastDaemon {
		return
	}
	t.lastDaemon = body
	t.write(body)
}

// RenderTestDetail writes the test heading and one line per task.
func (t *Text) RenderTestDetail(test *state.Test, active bool) {
	if test == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	body := DetailText(test, active)
	if body == t.lastDetail {
		return
	}
	t.lastDetail = body
	t.write(body)
}

// PollFailed writes a warning line. The daemon region is forgotten so the
// next good response prints the state again below the warning.
func (t *Text) PollFailed(err error, retryIn time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastDaemon = ""
	t.write(ui.WarningStyle().Render(fmt.Sprintf("%s %v (retrying in %s)", ui.SymbolWarning, err, retryIn)))
}

func (t *Text) write(body string) {
	stamp := strings.ReplaceAll(format.FormatDateTime(float64(format.Now())), "\n", " ")
	prefix := ui.MutedStyle().Render("[" + stamp + "]")
	if _, err := fmt.Fprintf(t.w, "%s %s\n", prefix, body); err != nil {
		t.log.Warn("write state: %v", err)
	}
}

// DaemonText is the plain form of the daemon and activity regions.
func DaemonText(active bool, activities []state.Activity) string {
	if !active {
		return IdleMessage
	}

	current := lipgloss.NewStyle().Foreground(ui.ColorNeonPink).Bold(true)

	var b strings.Builder
	b.WriteString(RunningMessage)
	for _, a := range activities {
		b.WriteString("\n")
		if a.Current {
			b.WriteString(current.Render(ui.SymbolCurrent + " " + a.Label))
		} else {
			b.WriteString("  " + a.Label)
		}
	}
	return b.String()
}

// DetailText is the plain form of the detail region.
func DetailText(test *state.Test, active bool) string {
	var b strings.Builder
	b.WriteString(DetailHeading(active))
	b.WriteString(": ")
	b.WriteString(test.Name)
	for _, task := range test.Tasks {
		b.WriteString("\n  ")
		b.WriteString(ui.TaskStyle(task.State).Render(ui.TaskSymbol(task.State)))
		b.WriteString(" ")
		b.WriteString(TaskLine(test, task))
	}
	return b.String()
}
