package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/neubot/nbwatch/internal/errors"
	"github.com/neubot/nbwatch/internal/util"
)

// OutputModes lists the accepted values of the output key.
var OutputModes = []string{OutputAuto, OutputTUI, OutputPlain, OutputHTML}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if err := ValidateEndpoint(cfg.Endpoint); err != nil {
		return err
	}

	if !strings.HasPrefix(cfg.StatePath, "/") {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("state_path must start with '/', got %q", cfg.StatePath),
			"The agent serves its state at /api/state")
	}

	if cfg.RequestTimeout < 0 {
		return errors.New(errors.ErrConfig,
			"request_timeout can't be negative",
			"Use 0 to disable the timeout, or a duration like 5m")
	}
	if cfg.RequestTimeout > 0 && cfg.RequestTimeout < MinRequestTimeout {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("request_timeout must be at least %s, got %s", MinRequestTimeout, cfg.RequestTimeout),
			"Each request is a long poll the agent may hold for minutes; use a duration like 5m")
	}

	if err := validateRetry(cfg.Retry); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
			"Check the 'retry' section in your .nbwatch.yaml.")
	}

	if !isOutputMode(cfg.Output) {
		suggestion := "Use one of: " + util.JoinOrDefault(OutputModes, "")
		if similar := util.SuggestSimilar(cfg.Output, OutputModes, 2); len(similar) > 0 {
			suggestion = fmt.Sprintf("Did you mean '%s'? %s", similar[0], suggestion)
		}
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown output mode %q", cfg.Output),
			suggestion)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return errors.New(errors.ErrConfig,
			"Telemetry is enabled but has no endpoint",
			"Set telemetry.endpoint to your collector, e.g. localhost:4318")
	}

	return nil
}

// ValidateEndpoint checks that raw is an absolute http(s) URL with a host.
func ValidateEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Invalid endpoint %q", raw),
			"Use a URL like http://127.0.0.1:9774")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Endpoint %q must use http or https", raw),
			"Use a URL like http://127.0.0.1:9774")
	}
	if u.Host == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Endpoint %q has no host", raw),
			"Use a URL like http://127.0.0.1:9774")
	}
	return nil
}

func validateRetry(r RetryConfig) error {
	if r.Initial <= 0 {
		return fmt.Errorf("retry.initial must be positive, got %s", r.Initial)
	}
	if r.Max < r.Initial {
		return fmt.Errorf("retry.max (%s) must not be less than retry.initial (%s)", r.Max, r.Initial)
	}
	if r.Multiplier < 1 {
		return fmt.Errorf("retry.multiplier must be at least 1, got %g", r.Multiplier)
	}
	if r.Jitter < 0 || r.Jitter >= 1 {
		return fmt.Errorf("retry.jitter must be in [0, 1), got %g", r.Jitter)
	}
	return nil
}

func isOutputMode(mode string) bool {
	for _, m := range OutputModes {
		if mode == m {
			return true
		}
	}
	return false
}
