package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/neubot/nbwatch/internal/api"
	"github.com/neubot/nbwatch/internal/config"
	"github.com/neubot/nbwatch/internal/errors"
	"github.com/neubot/nbwatch/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	initEndpointFlag       string
	initForce              bool
	initNonInteractiveFlag bool
)

// initCmd creates a new .nbwatch.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .nbwatch.yaml configuration",
	Long: `Create a .nbwatch.yaml file in the current directory.

Asks for the agent endpoint and the preferred output mode, then checks
that the agent answers before saving.

Examples:
  nbwatch init
  nbwatch init --endpoint http://192.168.1.20:9774
  nbwatch init --non-interactive --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults := getInitDefaults()
		opts := InitOptions{
			Dir:            ".",
			Endpoint:       defaults.Endpoint,
			Overwrite:      initForce,
			NonInteractive: defaults.NonInteractive || initNonInteractiveFlag,
			Out:            cmd.OutOrStdout(),
		}
		if initEndpointFlag != "" {
			opts.Endpoint = initEndpointFlag
		}
		return Init(cmd.Context(), opts)
	},
}

func init() {
	initCmd.Flags().StringVar(&initEndpointFlag, "endpoint", "", "agent base URL")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initNonInteractiveFlag, "non-interactive", false, "skip prompts and use defaults")
	rootCmd.AddCommand(initCmd)
}

// InitOptions holds options for the init command.
type InitOptions struct {
	Dir            string // Where to write the config file
	Endpoint       string // Pre-specified agent URL
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
	Out            io.Writer
}

// initDefaults are values picked up from the environment.
type initDefaults struct {
	Endpoint       string
	NonInteractive bool
}

// getInitDefaults reads NBWATCH_ENDPOINT and treats CI as non-interactive.
func getInitDefaults() initDefaults {
	d := initDefaults{
		Endpoint: os.Getenv(config.EnvPrefix + "_ENDPOINT"),
	}
	if v := strings.ToLower(os.Getenv(config.EnvPrefix + "_NON_INTERACTIVE")); v == "1" || v == "true" {
		d.NonInteractive = true
	}
	if os.Getenv("CI") != "" {
		d.NonInteractive = true
	}
	return d
}

// probeAgent asks the agent for its version. Replaced in tests.
var probeAgent = func(ctx context.Context, endpoint string) (string, error) {
	client, err := api.NewClient(endpoint)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return client.Version(ctx)
}

// Init creates a new .nbwatch.yaml configuration file.
func Init(ctx context.Context, opts InitOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	configPath := filepath.Join(opts.Dir, config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(opts.Out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if opts.Endpoint != "" {
		cfg.Endpoint = strings.TrimRight(opts.Endpoint, "/")
	}

	if !opts.NonInteractive {
		if err := promptConfig(cfg); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	fmt.Fprintf(opts.Out, "Checking agent at %s...\n", cfg.Endpoint)
	if agent, err := probeAgent(ctx, cfg.Endpoint); err != nil {
		ui.Warn(opts.Out, fmt.Sprintf("Agent did not answer: %v", err))
		fmt.Fprintln(opts.Out, "  Saving anyway; start Neubot and run 'nbwatch watch' to try again.")
	} else {
		fmt.Fprintf(opts.Out, "%s Agent %s is up\n", ui.SymbolSuccess, agent)
	}

	if err := writeConfig(configPath, cfg); err != nil {
		return err
	}

	fmt.Fprintf(opts.Out, "\n%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Fprintln(opts.Out, "Next steps:")
	fmt.Fprintln(opts.Out, "  nbwatch watch  - Follow the agent state")
	fmt.Fprintln(opts.Out, "  nbwatch state  - Print the current state once")

	return nil
}

// promptConfig asks for the endpoint and output mode.
func promptConfig(cfg *config.Config) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Agent endpoint").
				Description("Base URL of the Neubot agent").
				Placeholder(api.DefaultEndpoint).
				Value(&cfg.Endpoint).
				Validate(config.ValidateEndpoint),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Output").
				Description("How 'nbwatch watch' shows the state").
				Options(
					huh.NewOption("Auto (dashboard on a terminal)", config.OutputAuto),
					huh.NewOption("Dashboard", config.OutputTUI),
					huh.NewOption("Plain text", config.OutputPlain),
					huh.NewOption("HTML fragments", config.OutputHTML),
				).
				Value(&cfg.Output),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive flag")
	}
	cfg.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	return nil
}

// writeConfig marshals cfg to YAML with a header comment.
func writeConfig(path string, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	header := `# nbwatch configuration
# Run 'nbwatch watch' to follow the Neubot agent state.
# Any key can be overridden with an NBWATCH_ environment variable,
# e.g. NBWATCH_ENDPOINT or NBWATCH_RETRY_MAX.

`
	if err := os.WriteFile(path, []byte(header+string(data)), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", path),
			"Check directory permissions")
	}
	return nil
}
