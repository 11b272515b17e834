package doctor

import (
	"context"
	"fmt"

	"github.com/neubot/nbwatch/internal/config"
)

// NewConfigChecks returns the CONFIG checks for the given --config value
// (empty to search the usual places).
func NewConfigChecks(explicit string) []Check {
	return []Check{
		configCheck{name: "config_file", run: func() CheckResult { return checkConfigFile(explicit) }},
		configCheck{name: "config_schema", run: func() CheckResult { return checkConfigSchema(explicit) }},
	}
}

// configCheck adapts a context-free function to Check.
type configCheck struct {
	name string
	run  func() CheckResult
}

func (c configCheck) Name() string     { return c.name }
func (c configCheck) Category() string { return CategoryConfig }

func (c configCheck) Run(context.Context) CheckResult {
	r := c.run()
	r.Name = c.name
	return r
}

func checkConfigFile(explicit string) CheckResult {
	path, err := config.Find(explicit)
	switch {
	case err != nil:
		return CheckResult{
			Status:     StatusFail,
			Message:    "Error finding config: " + firstLine(err),
			Suggestion: "Check the --config path, or run 'nbwatch init' to create a config",
		}
	case path == "":
		return CheckResult{
			Status:     StatusWarn,
			Message:    "No config file found, using defaults",
			Suggestion: "Run 'nbwatch init' to create a .nbwatch.yaml config file",
		}
	}
	return CheckResult{Status: StatusPass, Message: "Config file: " + path}
}

func checkConfigSchema(explicit string) CheckResult {
	cfg, _, err := config.LoadOrDefault(explicit)
	if err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    "Failed to load config: " + firstLine(err),
			Suggestion: "Check the YAML syntax in your config file",
		}
	}
	if err := config.Validate(cfg); err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    "Invalid config: " + firstLine(err),
			Suggestion: "Fix the reported key in .nbwatch.yaml or the matching NBWATCH_ variable",
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Config is valid (endpoint %s, output %s)", cfg.Endpoint, cfg.Output),
	}
}
