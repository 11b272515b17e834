package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/neubot/nbwatch/internal/logger"
	"github.com/neubot/nbwatch/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile   string
	debugFlag bool
	noColor   bool
)

var rootCmd = &cobra.Command{
	Use:   "nbwatch",
	Short: "Follow the state of a local Neubot agent",
	Long: `nbwatch long-polls the Neubot agent's state API and shows what the
agent is doing: whether it is running, its current activity, and the
progress and results of the current or latest test.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugFlag {
			os.Setenv(logger.DebugEnvVar, "1")
		}
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .nbwatch.yaml, then ~/.config/nbwatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&machineMode, "json", false, "machine-readable JSON output")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if machineMode {
			_ = WriteJSONFromError(os.Stdout, err)
		} else {
			fmt.Fprint(os.Stderr, formatError(err))
		}
		os.Exit(1)
	}
}

// formatError renders err for the terminal, making sure it ends in a newline.
func formatError(err error) string {
	msg := err.Error()
	if isUnknownCommandError(err) {
		msg += "\nRun 'nbwatch --help' for usage."
	}
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	return msg
}

// isUnknownCommandError reports whether cobra rejected the command line.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}
