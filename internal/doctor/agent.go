package doctor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neubot/nbwatch/internal/state"
)

// SlowAnswer is how long a cursor-0 state request may take before the
// check warns. The agent answers it without waiting for a change.
const SlowAnswer = 2 * time.Second

// Agent is what the agent checks need from the API client.
type Agent interface {
	Version(ctx context.Context) (string, error)
	Fetch(ctx context.Context, cursor string) ([]byte, error)
}

// NewAgentChecks returns the AGENT category checks.
func NewAgentChecks(agent Agent, endpoint string) []Check {
	return []Check{
		&AgentVersionCheck{Agent: agent, Endpoint: endpoint},
		&StateDocumentCheck{Agent: agent},
	}
}

// AgentVersionCheck verifies the agent answers at all.
type AgentVersionCheck struct {
	Agent    Agent
	Endpoint string
}

func (c *AgentVersionCheck) Name() string     { return "agent_version" }
func (c *AgentVersionCheck) Category() string { return CategoryAgent }

func (c *AgentVersionCheck) Run(ctx context.Context) CheckResult {
	v, err := c.Agent.Version(ctx)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Agent not reachable at %s: %v", c.Endpoint, err),
			Suggestion: "Start Neubot, or point --endpoint / NBWATCH_ENDPOINT at the right host",
		}
	}
	if v == "" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusWarn,
			Message: "Agent answered with an empty version",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Agent " + v + " at " + c.Endpoint,
	}
}

// StateDocumentCheck requests the state at the initial cursor and parses it.
type StateDocumentCheck struct {
	Agent Agent
}

func (c *StateDocumentCheck) Name() string     { return "state_document" }
func (c *StateDocumentCheck) Category() string { return CategoryAgent }

func (c *StateDocumentCheck) Run(ctx context.Context) CheckResult {
	start := time.Now()
	body, err := c.Agent.Fetch(ctx, state.InitialCursor)
	elapsed := time.Since(start)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "State request failed: " + err.Error(),
			Suggestion: "Check state_path in your config (default /api/state)",
		}
	}

	snap, err := state.Parse(body)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "State document is not valid XML: " + err.Error(),
			Suggestion: "Make sure the endpoint is a Neubot agent",
		}
	}

	if snap.Cursor == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "State document has no cursor",
			Suggestion: "Without a cursor every poll returns at once; watch will still work but polls constantly",
		}
	}

	if elapsed > SlowAnswer {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("State answered in %s", elapsed.Round(time.Millisecond)),
			Suggestion: "The first request should return immediately; the agent may be overloaded",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: describe(snap),
	}
}

// describe summarizes a snapshot in one line.
func describe(snap state.Snapshot) string {
	parts := []string{"cursor " + snap.Cursor}
	if snap.DaemonActive {
		if a, ok := snap.CurrentActivity(); ok {
			parts = append(parts, "running ("+a.Label+")")
		} else {
			parts = append(parts, "running")
		}
	} else {
		parts = append(parts, "idle")
	}
	if snap.Test != nil && snap.Test.Name != "" {
		parts = append(parts, "test "+snap.Test.Name)
	}
	return "State OK: " + strings.Join(parts, ", ")
}

// firstLine keeps the headline of a multi-line structured error.
func firstLine(err error) string {
	msg := strings.TrimSpace(err.Error())
	msg = strings.TrimPrefix(msg, "✗ ")
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}
