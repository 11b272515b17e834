package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/neubot/nbwatch/internal/logger"
	"github.com/neubot/nbwatch/internal/statesync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedSender is a recordingSender safe for use from the poll goroutines.
type lockedSender struct {
	mu      sync.Mutex
	msgs    []tea.Msg
	version chan struct{}
}

func newLockedSender() *lockedSender {
	return &lockedSender{version: make(chan struct{})}
}

func (s *lockedSender) Send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	if _, ok := msg.(AgentVersionMsg); ok {
		close(s.version)
	}
}

func (s *lockedSender) versions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, m := range s.msgs {
		if v, ok := m.(AgentVersionMsg); ok {
			out = append(out, v.Version)
		}
	}
	return out
}

// stubAgent answers Version with version after waiting for release (or the
// context), and hands every Fetch to onFetch.
type stubAgent struct {
	version  string
	release  chan struct{}
	returned atomic.Bool
	fetches  atomic.Int32
	onFetch  func(ctx context.Context) ([]byte, error)
}

func (a *stubAgent) Version(ctx context.Context) (string, error) {
	defer a.returned.Store(true)
	if a.release != nil {
		select {
		case <-a.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return a.version, nil
}

func (a *stubAgent) Fetch(ctx context.Context, _ string) ([]byte, error) {
	a.fetches.Add(1)
	return a.onFetch(ctx)
}

func runPoll(t *testing.T, ctx context.Context, agent *stubAgent, sender *lockedSender, log logger.Logger, timeout time.Duration) error {
	t.Helper()
	bridge := NewBridge(sender)
	syncer := statesync.New(agent, bridge)

	errc := make(chan error, 1)
	go func() { errc <- poll(ctx, agent, syncer, bridge, log, timeout) }()

	select {
	case err := <-errc:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("poll did not return")
		return nil
	}
}

func TestPoll_SlowVersionDoesNotDelayFirstRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var versionPendingAtFetch bool
	agent := &stubAgent{
		version: "0.4.15",
		release: make(chan struct{}),
	}
	agent.onFetch = func(ctx context.Context) ([]byte, error) {
		versionPendingAtFetch = !agent.returned.Load()
		cancel()
		return nil, ctx.Err()
	}

	err := runPoll(t, ctx, agent, newLockedSender(), logger.Noop(), time.Minute)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), agent.fetches.Load())
	assert.True(t, versionPendingAtFetch, "first fetch should not wait for the version lookup")
	assert.True(t, agent.returned.Load(), "poll should wait for the version lookup to finish")
}

func TestPoll_ReportsAgentVersion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := newLockedSender()
	agent := &stubAgent{version: "0.4.15"}
	agent.onFetch = func(ctx context.Context) ([]byte, error) {
		select {
		case <-sender.version:
		case <-time.After(2 * time.Second):
		}
		cancel()
		return nil, ctx.Err()
	}

	err := runPoll(t, ctx, agent, sender, logger.Noop(), time.Minute)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"0.4.15"}, sender.versions())
}

func TestPoll_VersionLookupTimesOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logger.NewBufferLogger()
	sender := newLockedSender()
	agent := &stubAgent{
		version: "0.4.15",
		release: make(chan struct{}),
	}
	agent.onFetch = func(ctx context.Context) ([]byte, error) {
		deadline := time.Now().Add(2 * time.Second)
		for !agent.returned.Load() && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		cancel()
		return nil, ctx.Err()
	}

	err := runPoll(t, ctx, agent, sender, log, 10*time.Millisecond)

	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, agent.returned.Load())
	assert.Empty(t, sender.versions())
	assert.True(t, log.Contains(logger.LevelDebug, "agent version unavailable"))
}
