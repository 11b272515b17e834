package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/neubot/nbwatch/internal/config"
	"github.com/neubot/nbwatch/internal/errors"
	"github.com/neubot/nbwatch/internal/logger"
	"github.com/neubot/nbwatch/internal/monitor"
	"github.com/neubot/nbwatch/internal/render"
	"github.com/neubot/nbwatch/internal/statesync"
	"github.com/neubot/nbwatch/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// debugLogFile receives log output while the TUI owns the terminal.
const debugLogFile = "nbwatch-debug.log"

var (
	watchEndpointFlag string
	watchOutputFlag   string
)

// watchCmd follows the agent state until interrupted
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the agent state",
	Long: `Long-poll the agent's state API and render every change.

Output modes:
  auto   TUI dashboard on a terminal, plain lines otherwise (default)
  tui    Interactive dashboard
  plain  One timestamped block per change
  html   The daemon, state and detail regions as HTML fragments

Keyboard shortcuts (TUI):
  q / Ctrl+C  Quit
  up/k        Scroll details up
  down/j      Scroll details down
  g / G       Jump to top / bottom
  ?           Show help

Examples:
  nbwatch watch
  nbwatch watch --output plain
  nbwatch watch --endpoint http://192.168.1.20:9774`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(cmd.Context(), watchEndpointFlag, watchOutputFlag)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchEndpointFlag, "endpoint", "", "agent base URL (overrides config)")
	watchCmd.Flags().StringVarP(&watchOutputFlag, "output", "o", "", "output mode: auto, tui, plain, html")
	rootCmd.AddCommand(watchCmd)
}

// watchCommand is the implementation called by the cobra command.
func watchCommand(ctx context.Context, endpoint, output string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	wc, err := SetupWorkflow(ctx, WorkflowOptions{
		Endpoint:  endpoint,
		Output:    output,
		Telemetry: true,
	})
	if err != nil {
		return err
	}
	defer wc.Close()

	switch resolveOutput(wc.Config.Output, isTerminal(os.Stdout) && isTerminal(os.Stdin)) {
	case config.OutputTUI:
		err = runDashboard(ctx, wc)
	case config.OutputHTML:
		err = runStream(ctx, wc, render.NewHTML(
			render.WithSink(os.Stdout),
			render.WithHTMLLogger(wc.Log),
		))
	default:
		printHeader(ctx, wc, os.Stdout)
		err = runStream(ctx, wc, render.NewText(os.Stdout, wc.Log))
	}

	if stderrors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// resolveOutput turns "auto" into a concrete mode.
func resolveOutput(mode string, tty bool) string {
	if mode != config.OutputAuto && mode != "" {
		return mode
	}
	if tty {
		return config.OutputTUI
	}
	return config.OutputPlain
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// runStream drives the poll loop with a line-oriented renderer until ctx ends.
func runStream(ctx context.Context, wc *WorkflowContext, r statesync.Renderer) error {
	syncer := statesync.New(wc.Client, r, wc.SyncOptions()...)
	wc.Log.Debug("polling %s", wc.Client.StateURL(syncer.Cursor()))
	return syncer.Run(ctx)
}

// runDashboard runs the TUI. Log output would corrupt the screen, so it goes
// to a file when debugging and is dropped otherwise.
func runDashboard(ctx context.Context, wc *WorkflowContext) error {
	if logger.DebugEnabled() {
		f, err := tea.LogToFile(debugLogFile, "nbwatch")
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrRender,
				"Can't open "+debugLogFile,
				"Check that the current directory is writable, or run without --debug")
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}
	defer log.SetOutput(os.Stderr)

	err := monitor.Run(ctx, wc.Client, monitor.RunOptions{
		Version:     formatVersion(version),
		Endpoint:    wc.Client.Endpoint(),
		SyncOptions: wc.SyncOptions(),
		Log:         wc.Log,
	})
	if err != nil && !stderrors.Is(err, context.Canceled) {
		return errors.WrapWithCode(err, errors.ErrRender,
			"Dashboard stopped unexpectedly",
			"Try --output plain if your terminal does not support full-screen apps")
	}
	return nil
}

// printHeader writes the branded header, with the agent version when the
// agent answers quickly.
func printHeader(ctx context.Context, wc *WorkflowContext, w io.Writer) {
	info := ui.HeaderInfo{
		Version:  formatVersion(version),
		Endpoint: wc.Client.Endpoint(),
	}

	vctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if v, err := wc.Client.Version(vctx); err != nil {
		wc.Log.Debug("agent version unavailable: %v", err)
	} else {
		info.Agent = v
	}

	fmt.Fprint(w, ui.RenderHeader(info))
}
