package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/neubot/nbwatch/internal/format"
	"github.com/neubot/nbwatch/internal/state"
	"github.com/neubot/nbwatch/internal/ui"
)

// Height breakpoints for layout adjustments
const (
	HeightMinimal = 12
)

// Fixed rows around the detail viewport: header, blank line, detail
// section header and footer, status line, key hints.
const chromeHeight = 6

// clockInterval is how often the session age in the header is refreshed.
const clockInterval = 15 * time.Second

// Options configures the dashboard model.
type Options struct {
	Version  string // nbwatch version shown in the header
	Endpoint string // agent base URL
	// Cancel stops the poll loop when the user quits.
	Cancel context.CancelFunc
}

// Model is the Bubble Tea model for the state dashboard. It holds the last
// rendered content of both regions; the poll loop feeds it through Bridge.
type Model struct {
	version      string
	endpoint     string
	agentVersion string

	started    int64 // ms since epoch
	lastUpdate int64 // ms since epoch, 0 before the first response

	received   bool
	active     bool
	activities []state.Activity

	test       *state.Test
	testActive bool

	failure string
	retryIn time.Duration

	spinner ui.WaitIndicator
	detail  viewport.Model
	help    help.Model
	keys    KeyMap

	width    int
	height   int
	showHelp bool
	quitting bool
	cancel   context.CancelFunc
	err      error
}

// NewModel creates a dashboard waiting for its first state document.
func NewModel(opts Options) Model {
	return Model{
		version:  opts.Version,
		endpoint: opts.Endpoint,
		started:  format.Now(),
		spinner:  ui.NewWaitIndicator("Waiting for the agent"),
		detail:   viewport.New(0, 0),
		help:     help.New(),
		keys:     DefaultKeyMap(),
		cancel:   opts.Cancel,
	}
}

// Init starts the spinner and the header clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick(), clockCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()

	case DaemonStateMsg:
		m.markReceived()
		m.active = msg.Active
		if msg.Active {
			m.activities = msg.Activities
		} else {
			m.activities = nil
		}
		m.resize()

	case TestDetailMsg:
		m.markReceived()
		m.test = msg.Test
		m.testActive = msg.Active
		m.detail.SetContent(m.renderDetailContent())

	case PollFailedMsg:
		m.failure = msg.Err
		m.retryIn = msg.RetryIn
		if !m.received {
			m.spinner.Retrying(msg.RetryIn)
		}

	case AgentVersionMsg:
		m.agentVersion = msg.Version

	case clockMsg:
		return m, clockCmd()

	case syncDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.err = msg.err
		}
		m.quitting = true
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// Err returns the error that stopped the poll loop, if any.
func (m Model) Err() error {
	return m.err
}

// Received reports whether at least one state document has been rendered.
func (m Model) Received() bool {
	return m.received
}

// SessionAge is the time since the dashboard started, in the header's words.
func (m Model) SessionAge() string {
	return format.FormatMinutes(float64(format.Now() - m.started))
}

// LastUpdate is when the last state document arrived, or "" before the
// first one.
func (m Model) LastUpdate() string {
	if m.lastUpdate == 0 {
		return ""
	}
	return format.FormatDateTime(float64(m.lastUpdate))
}

func (m *Model) markReceived() {
	if !m.received {
		m.received = true
		m.spinner.Done()
	}
	m.failure = ""
	m.retryIn = 0
	m.lastUpdate = format.Now()
}

// resize fits the detail viewport between the daemon section and the footer.
func (m *Model) resize() {
	if m.width == 0 {
		return
	}
	h := m.height - chromeHeight - m.daemonSectionHeight()
	if h < 1 {
		h = 1
	}
	m.detail.Width = m.width - 4 // "│ " and " │"
	m.detail.Height = h
	m.detail.SetContent(m.renderDetailContent())
}

func clockCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}
