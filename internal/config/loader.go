package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/neubot/nbwatch/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".nbwatch.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/nbwatch"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. NBWATCH_RETRY_MAX.
	EnvPrefix = "NBWATCH"
	// DotEnvFile is loaded from the config directory when present.
	DotEnvFile = ".env"
)

// Load reads config from the specified path. Environment variables
// override file values.
func Load(path string) (*Config, error) {
	path = expandHome(path)
	if err := loadDotEnv(filepath.Dir(path)); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'nbwatch init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .nbwatch.yaml in current directory
// 3. .nbwatch.yaml in parent directories (stops at git root or home)
// 4. ~/.config/nbwatch/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		explicit = expandHome(explicit)
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	home, _ := os.UserHomeDir()
	dir := cwd
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && parent == home {
			// Don't go above home directory
			break
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		if isGitRoot(dir) {
			break
		}
	}

	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults (with
// environment overrides applied) if no file exists.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path != "" {
		cfg, err := Load(path)
		return cfg, path, err
	}

	cwd, _ := os.Getwd()
	if err := loadDotEnv(cwd); err != nil {
		return nil, "", err
	}
	cfg, err := parseConfig(newViper(), "")
	return cfg, "", err
}

// newViper returns a viper instance with every key defaulted and bound to
// its NBWATCH_ environment variable.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		where := "your environment"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the values in "+where)
	}

	cfg.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	cfg.Output = strings.ToLower(strings.TrimSpace(cfg.Output))

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal. Durations are given as strings and decoded by viper's hooks.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("endpoint", def.Endpoint)
	v.SetDefault("state_path", def.StatePath)
	v.SetDefault("request_timeout", def.RequestTimeout.String())
	v.SetDefault("retry.initial", def.Retry.Initial.String())
	v.SetDefault("retry.max", def.Retry.Max.String())
	v.SetDefault("retry.multiplier", def.Retry.Multiplier)
	v.SetDefault("retry.jitter", def.Retry.Jitter)
	v.SetDefault("output", def.Output)
	v.SetDefault("telemetry.enabled", def.Telemetry.Enabled)
	v.SetDefault("telemetry.endpoint", def.Telemetry.Endpoint)
	v.SetDefault("telemetry.insecure", def.Telemetry.Insecure)
}

// loadDotEnv loads dir/.env into the process environment. Variables that
// are already set win over the file.
func loadDotEnv(dir string) error {
	if dir == "" {
		return nil
	}
	path := filepath.Join(dir, DotEnvFile)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read "+path,
			"Check the file uses KEY=value lines")
	}
	return nil
}

// isGitRoot checks if a directory is a git repository root.
func isGitRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	return info.IsDir()
}

// expandHome resolves a leading "~" to the current user's home directory.
// "~user" forms are left alone.
func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/') {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
