package config

import (
	"time"

	"github.com/neubot/nbwatch/internal/statesync"
)

// Output modes accepted by the watch command.
const (
	OutputAuto  = "auto"
	OutputTUI   = "tui"
	OutputPlain = "plain"
	OutputHTML  = "html"
)

// MinRequestTimeout is the smallest non-zero request_timeout. Shorter
// timeouts would expire before the agent can answer a long poll.
const MinRequestTimeout = statesync.DefaultMinLongPoll

// Config represents the complete .nbwatch.yaml configuration file.
type Config struct {
	// Endpoint is the base URL of the agent, without the API path.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`

	// StatePath is the path of the long-poll state resource.
	StatePath string `yaml:"state_path" mapstructure:"state_path"`

	// RequestTimeout bounds one long-poll request. Zero disables it.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`

	Retry     RetryConfig     `yaml:"retry" mapstructure:"retry"`
	Output    string          `yaml:"output" mapstructure:"output"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// RetryConfig controls the wait between failed polls.
type RetryConfig struct {
	Initial    time.Duration `yaml:"initial" mapstructure:"initial"`
	Max        time.Duration `yaml:"max" mapstructure:"max"`
	Multiplier float64       `yaml:"multiplier" mapstructure:"multiplier"`

	// Jitter randomizes each delay by up to this fraction.
	Jitter float64 `yaml:"jitter" mapstructure:"jitter"`
}

// TelemetryConfig controls OpenTelemetry trace export.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	retry := statesync.DefaultRetryPolicy()
	return &Config{
		Endpoint:       "http://127.0.0.1:9774",
		StatePath:      "/api/state",
		RequestTimeout: 5 * time.Minute,
		Retry: RetryConfig{
			Initial:    retry.Initial,
			Max:        retry.Max,
			Multiplier: retry.Multiplier,
			Jitter:     retry.Jitter,
		},
		Output: OutputAuto,
		Telemetry: TelemetryConfig{
			Endpoint: "localhost:4318",
			Insecure: true,
		},
	}
}

// RetryPolicy converts the retry section for the poll loop.
func (c *Config) RetryPolicy() statesync.RetryPolicy {
	return statesync.RetryPolicy{
		Initial:    c.Retry.Initial,
		Max:        c.Retry.Max,
		Multiplier: c.Retry.Multiplier,
		Jitter:     c.Retry.Jitter,
	}
}
