package monitor

import (
	"time"

	"github.com/neubot/nbwatch/internal/state"
)

// DaemonStateMsg carries render pass A.
type DaemonStateMsg struct {
	Active     bool
	Activities []state.Activity
}

// TestDetailMsg carries render pass B. Test is never nil.
type TestDetailMsg struct {
	Test   *state.Test
	Active bool
}

// PollFailedMsg reports a failed poll and the wait before the next one.
type PollFailedMsg struct {
	Err     string
	RetryIn time.Duration
}

// AgentVersionMsg carries the agent version for the header.
type AgentVersionMsg struct {
	Version string
}

// clockMsg refreshes the session age in the header.
type clockMsg time.Time

// syncDoneMsg signals that the poll loop has stopped.
type syncDoneMsg struct {
	err error
}
