package monitor

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/neubot/nbwatch/internal/logger"
	"github.com/neubot/nbwatch/internal/statesync"
)

// Agent is what the dashboard needs from the agent API.
type Agent interface {
	statesync.Fetcher
	Version(ctx context.Context) (string, error)
}

// versionTimeout bounds the agent version lookup shown in the header.
const versionTimeout = 2 * time.Second

// RunOptions configures the dashboard execution.
type RunOptions struct {
	Version  string
	Endpoint string
	// SyncOptions are passed to statesync.New.
	SyncOptions []statesync.Option
	Log         logger.Logger

	// Input and Output override the terminal, mainly for tests.
	Input  io.Reader
	Output io.Writer
}

// Run starts the poll loop in a background goroutine and the TUI on the
// calling goroutine. It returns when the user quits or ctx is cancelled.
func Run(ctx context.Context, agent Agent, opts RunOptions) error {
	log := opts.Log
	if log == nil {
		log = logger.Noop()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(Options{
		Version:  opts.Version,
		Endpoint: opts.Endpoint,
		Cancel:   cancel,
	})

	programOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}
	program := tea.NewProgram(model, programOpts...)

	bridge := NewBridge(program)
	syncer := statesync.New(agent, bridge, opts.SyncOptions...)

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := poll(ctx, agent, syncer, bridge, log, versionTimeout)
		log.Debug("poll loop stopped: %v", err)
		bridge.SyncDone(err)
	}()

	final, err := program.Run()
	cancel()
	<-done

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if m, ok := final.(Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

// poll runs the syncer while the agent version is looked up on the side,
// so a slow /api/version never holds back the first state request.
func poll(ctx context.Context, agent Agent, syncer *statesync.Syncer, bridge *Bridge, log logger.Logger, timeout time.Duration) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		vctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if v, err := agent.Version(vctx); err != nil {
			log.Debug("agent version unavailable: %v", err)
		} else if v != "" {
			bridge.AgentVersion(v)
		}
	}()

	err := syncer.Run(ctx)
	wg.Wait()
	return err
}
