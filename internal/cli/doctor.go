package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/neubot/nbwatch/internal/api"
	"github.com/neubot/nbwatch/internal/config"
	"github.com/neubot/nbwatch/internal/doctor"
	"github.com/neubot/nbwatch/internal/ui"
	"github.com/spf13/cobra"
)

var doctorEndpointFlag string

// doctorCmd diagnoses config and agent issues
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config and agent issues",
	Long: `Run diagnostic checks to find common problems.

Checks:
  - Which config file is in effect and whether it is valid
  - Whether the agent answers at the configured endpoint
  - Whether the state document parses and carries a cursor

Examples:
  nbwatch doctor
  nbwatch doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.Context(), cmd.OutOrStdout(), doctorEndpointFlag)
	},
}

func init() {
	doctorCmd.Flags().StringVar(&doctorEndpointFlag, "endpoint", "", "agent base URL (overrides config)")
	rootCmd.AddCommand(doctorCmd)
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand implements the doctor command logic. Config problems do not
// stop the agent checks: they fall back to the default endpoint.
func doctorCommand(ctx context.Context, w io.Writer, endpoint string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	checks := collectChecks(endpoint)
	results := doctor.RunAll(ctx, checks)

	if machineMode {
		return WriteJSONSuccess(w, buildDoctorOutput(checks, results))
	}
	renderDoctorText(w, checks, results)
	return nil
}

// collectChecks gathers the config checks and, when a client can be built,
// the agent checks.
func collectChecks(endpoint string) []doctor.Check {
	checks := doctor.NewConfigChecks(cfgFile)

	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}

	client, err := api.NewClient(cfg.Endpoint,
		api.WithStatePath(cfg.StatePath),
		api.WithRequestTimeout(doctor.SlowAnswer*5),
	)
	if err != nil {
		return append(checks, endpointCheck{err: err, endpoint: cfg.Endpoint})
	}
	return append(checks, doctor.NewAgentChecks(client, client.Endpoint())...)
}

// endpointCheck reports an endpoint the client refused to use.
type endpointCheck struct {
	endpoint string
	err      error
}

func (c endpointCheck) Name() string     { return "agent_endpoint" }
func (c endpointCheck) Category() string { return doctor.CategoryAgent }
func (c endpointCheck) Run(context.Context) doctor.CheckResult {
	return doctor.CheckResult{
		Name:       c.Name(),
		Status:     doctor.StatusFail,
		Message:    fmt.Sprintf("Can't use endpoint %q: %v", c.endpoint, c.err),
		Suggestion: "Use a URL like http://127.0.0.1:9774",
	}
}

func buildDoctorOutput(checks []doctor.Check, results []doctor.CheckResult) DoctorOutput {
	grouped := make(map[string][]doctor.CheckResult)
	var order []string
	for i, check := range checks {
		cat := check.Category()
		if _, ok := grouped[cat]; !ok {
			order = append(order, cat)
		}
		grouped[cat] = append(grouped[cat], results[i])
	}

	out := DoctorOutput{Categories: make([]CategoryOutput, 0, len(order))}
	for _, cat := range order {
		out.Categories = append(out.Categories, CategoryOutput{Name: cat, Results: grouped[cat]})
	}

	tally := doctor.Count(results)
	out.Summary = SummaryOutput{
		Pass:     tally.Pass,
		Warn:     tally.Warn,
		Fail:     tally.Fail,
		AllClear: tally.Issues() == 0,
	}
	return out
}

// renderDoctorText writes the human-readable report.
func renderDoctorText(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) {
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("nbwatch Diagnostic Report"))
	fmt.Fprintln(w)

	for _, category := range []string{doctor.CategoryConfig, doctor.CategoryAgent} {
		printed := false
		for i, check := range checks {
			if check.Category() != category {
				continue
			}
			if !printed {
				fmt.Fprintln(w, headerStyle.Render(category))
				printed = true
			}
			renderCheckResult(w, results[i])
		}
		if printed {
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintln(w, strings.Repeat("━", 60))
	fmt.Fprintln(w)

	tally := doctor.Count(results)
	mark := ui.SuccessStyle().Render(ui.SymbolSuccess)
	if tally.Issues() > 0 {
		mark = ui.ErrorStyle().Render(ui.SymbolFail)
	}
	fmt.Fprintf(w, "%s %s\n", mark, tally.Summary())
	fmt.Fprintln(w)
}

// renderCheckResult renders a single check result.
func renderCheckResult(w io.Writer, result doctor.CheckResult) {
	var symbol string
	var style lipgloss.Style

	switch result.Status {
	case doctor.StatusPass:
		symbol, style = ui.SymbolComplete, ui.SuccessStyle()
	case doctor.StatusWarn:
		symbol, style = ui.SymbolWarning, ui.WarningStyle()
	default:
		symbol, style = ui.SymbolFail, ui.ErrorStyle()
	}

	fmt.Fprintf(w, "  %s %s\n", style.Render(symbol), result.Message)

	if result.Suggestion != "" && result.Status != doctor.StatusPass {
		for _, line := range strings.Split(result.Suggestion, "\n") {
			fmt.Fprintf(w, "    %s\n", ui.MutedStyle().Render(line))
		}
	}
}
