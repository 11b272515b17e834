package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// waitFrames is a braille scan at 16 fps.
var waitFrames = spinner.Spinner{
	Frames: []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"},
	FPS:    time.Second / 16,
}

// WaitIndicator animates while a model waits on the agent. It starts
// animating as soon as it is created and stops for good after Done.
type WaitIndicator struct {
	spinner spinner.Model
	label   string
	since   time.Time
	retryIn time.Duration
	done    bool
}

// NewWaitIndicator returns a running indicator showing label.
func NewWaitIndicator(label string) WaitIndicator {
	sp := spinner.New(spinner.WithSpinner(waitFrames))
	sp.Style = lipgloss.NewStyle().Foreground(ColorNeonCyan)
	return WaitIndicator{spinner: sp, label: label, since: time.Now()}
}

// Tick is the first animation frame; return it from Init.
func (w WaitIndicator) Tick() tea.Cmd {
	return w.spinner.Tick
}

// Update advances the animation. Ticks after Done are dropped, which ends
// the tick chain.
func (w WaitIndicator) Update(msg tea.Msg) (WaitIndicator, tea.Cmd) {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || w.done {
		return w, nil
	}
	var cmd tea.Cmd
	w.spinner, cmd = w.spinner.Update(tick)
	return w, cmd
}

// Retrying notes that the last attempt failed and the next one is d away.
func (w *WaitIndicator) Retrying(d time.Duration) {
	w.retryIn = d
}

// Done stops the animation.
func (w *WaitIndicator) Done() {
	w.done = true
}

// Active reports whether the indicator still animates.
func (w WaitIndicator) Active() bool {
	return !w.done
}

// Waited is how long the indicator has been running.
func (w WaitIndicator) Waited() time.Duration {
	return time.Since(w.since)
}

// View renders the frame and label, with the retry delay once one is known.
func (w WaitIndicator) View() string {
	if w.done {
		return SuccessStyle().Render(SymbolComplete) + " " + w.label
	}
	label := w.label
	if w.retryIn > 0 {
		label += " " + WarningStyle().Render("(retrying in "+w.retryIn.String()+")")
	}
	return w.spinner.View() + " " + label + "..."
}
