package monitor

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/neubot/nbwatch/internal/state"
)

// Sender is the part of *tea.Program the bridge needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge implements statesync.Renderer and statesync.FailureReporter by
// forwarding every call to the Bubble Tea program via Send, which is
// goroutine-safe. The poll loop never touches the model directly.
type Bridge struct {
	program Sender
}

// NewBridge creates a new bridge that forwards events to the given program.
func NewBridge(program Sender) *Bridge {
	return &Bridge{program: program}
}

// RenderDaemonState forwards render pass A.
func (b *Bridge) RenderDaemonState(active bool, activities []state.Activity) {
	b.program.Send(DaemonStateMsg{
		Active:     active,
		Activities: append([]state.Activity(nil), activities...),
	})
}

// RenderTestDetail forwards render pass B.
func (b *Bridge) RenderTestDetail(test *state.Test, active bool) {
	if test == nil {
		return
	}
	b.program.Send(TestDetailMsg{Test: test, Active: active})
}

// PollFailed forwards a poll failure.
func (b *Bridge) PollFailed(err error, retryIn time.Duration) {
	b.program.Send(PollFailedMsg{Err: err.Error(), RetryIn: retryIn})
}

// AgentVersion forwards the agent version.
func (b *Bridge) AgentVersion(version string) {
	b.program.Send(AgentVersionMsg{Version: version})
}

// SyncDone signals that the poll loop has returned.
func (b *Bridge) SyncDone(err error) {
	b.program.Send(syncDoneMsg{err: err})
}
