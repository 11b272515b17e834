package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Set from main through SetVersionInfo (ldflags at build time).
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	versionShort bool
	versionAgent bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the nbwatch build and, with --agent, the version reported by
the agent at the configured endpoint.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentBuild()
		if versionAgent {
			info.Agent = lookupAgentVersion(cmd.Context())
		}
		if machineMode {
			return WriteJSONSuccess(cmd.OutOrStdout(), info)
		}
		info.write(cmd.OutOrStdout(), versionShort)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version number")
	versionCmd.Flags().BoolVar(&versionAgent, "agent", false, "also ask the agent for its version")
	rootCmd.AddCommand(versionCmd)
}

// BuildInfo describes this binary and, optionally, the agent it talks to.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
	OSArch  string `json:"os_arch"`
	Agent   string `json:"agent,omitempty"`
}

func currentBuild() BuildInfo {
	return BuildInfo{
		Version: formatVersion(version),
		Commit:  commit,
		Date:    date,
		Go:      runtime.Version(),
		OSArch:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (b BuildInfo) write(w io.Writer, short bool) {
	if short {
		fmt.Fprintln(w, strings.TrimPrefix(b.Version, "v"))
		return
	}

	fmt.Fprintf(w, "nbwatch %s\n", b.Version)
	fmt.Fprintf(w, "commit:  %s\n", b.Commit)
	fmt.Fprintf(w, "built:   %s\n", b.Date)
	fmt.Fprintf(w, "go:      %s (%s)\n", b.Go, b.OSArch)
	if b.Agent != "" {
		fmt.Fprintf(w, "agent:   %s\n", b.Agent)
	}
}

// lookupAgentVersion returns the agent version, or "unreachable" when the
// agent does not answer within a few seconds.
func lookupAgentVersion(ctx context.Context) string {
	if ctx == nil {
		ctx = context.Background()
	}
	wc, err := SetupWorkflow(ctx, WorkflowOptions{})
	if err != nil {
		return "unreachable"
	}
	defer wc.Close()

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	v, err := wc.Client.Version(ctx)
	if err != nil || v == "" {
		wc.Log.Debug("agent version lookup failed: %v", err)
		return "unreachable"
	}
	return v
}

// formatVersion adds a "v" prefix to release versions.
func formatVersion(v string) string {
	if v == "" || v == "dev" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// SetVersionInfo records the build metadata; main calls it before Execute.
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}
