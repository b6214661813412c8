package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
)

// findConfigFile finds the config file to use.
// Priority: explicit path > framebench.yaml > framebench.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"framebench.yaml", "framebench.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

// GetConfigFileUsed returns the path of the config file that was loaded,
// or the empty string when only defaults, env, and flags applied.
func GetConfigFileUsed() string {
	return configFileUsed
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"engine":   DefaultEngine,
		"database": DefaultDatabase,
		"history":  DefaultHistory,
		"rows":     DefaultRows,
		"cols":     DefaultCols,
		"bins":     DefaultBins,
		"seed":     DefaultSeed,
		"output":   DefaultOutput,
		"no_chart": false,
		"verbose":  false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Load config file, if one exists
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (FRAMEBENCH_ prefix)
	// Transform: FRAMEBENCH_NO_CHART -> no_chart
	if err := k.Load(env.Provider("FRAMEBENCH_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "FRAMEBENCH_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects values no command could act on.
func validate(cfg *Config) error {
	switch cfg.OutputFormat {
	case "table", "json":
	default:
		return fmt.Errorf("invalid output format %q (expected table or json)", cfg.OutputFormat)
	}
	if cfg.Rows < 1 {
		return fmt.Errorf("rows must be positive, got %d", cfg.Rows)
	}
	if cfg.Cols < 1 {
		return fmt.Errorf("cols must be positive, got %d", cfg.Cols)
	}
	if cfg.Bins < 1 {
		return fmt.Errorf("bins must be positive, got %d", cfg.Bins)
	}
	return nil
}
